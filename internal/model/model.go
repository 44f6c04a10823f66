// Package model содержит доменные сущности сервиса SpotLight.
package model

import "time"

// Customer представляет клиента рекламной компании.
type Customer struct {
	ID              int64   `json:"cID"`
	FirstName       string  `json:"fName"`
	LastName        string  `json:"lName"`
	Email           string  `json:"email"`
	Position        *string `json:"position"`
	CompanyName     *string `json:"companyName"`
	TotalOrderTimes int     `json:"totalOrderTimes"`
	VIP             bool    `json:"VIP"`
	AvatarURL       *string `json:"avatarURL"`
	Balance         float64 `json:"balance"`
	Tel             *string `json:"TEL"`
}

// SpotStatus описывает статус рекламной площадки.
type SpotStatus string

const (
	SpotStatusFree    SpotStatus = "free"
	SpotStatusInUse   SpotStatus = "inuse"
	SpotStatusPlanned SpotStatus = "planned"
	SpotStatusIssue   SpotStatus = "w.issue"
)

// Spot представляет рекламную площадку (билборд, место размещения).
type Spot struct {
	ID                    int64      `json:"spotID"`
	Price                 float64    `json:"price"`
	ContactTel            string     `json:"contactTel"`
	EstViewPerMonth       *int64     `json:"estViewPerMonth"`
	MonthlyRentCost       *float64   `json:"monthlyRentCost"`
	EndTimeOfCurrentOrder *time.Time `json:"endTimeOfCurrentOrder"`
	Status                SpotStatus `json:"status"`
	Address               string     `json:"address"`
	Longitude             *float64   `json:"longitude"`
	Latitude              *float64   `json:"latitude"`
	ImageURL              *string    `json:"imageURL"`
	// DistanceKM заполняется только гео-запросами.
	DistanceKM *float64 `json:"distance_km,omitempty"`
}

// OrderStatus описывает статус обработки заказа. Колонка status в таблице
// orders — единственный источник истины; маркерные таблицы хранят детали.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusProcessed OrderStatus = "processed"
)

// PaymentStatus — классификация заказа для отображения. UNKNOWN означает
// расхождение между статусом заказа и его детальными записями.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusProcessed PaymentStatus = "PROCESSED"
	PaymentStatusUnknown   PaymentStatus = "UNKNOWN"
)

// Order представляет заказ на размещение рекламы. Date — дата начала
// размещения (см. DESIGN.md о семантике поля).
type Order struct {
	ID         int64       `json:"orderID"`
	Date       time.Time   `json:"date"`
	Total      float64     `json:"total"`
	CustomerID int64       `json:"cID"`
	Status     OrderStatus `json:"status"`
}

// PendingOrder — маркер необработанного заказа с его текущей подстадией.
type PendingOrder struct {
	OrderID   int64  `json:"orderID"`
	Substatus string `json:"status"`
}

// ProcessedOrder — запись об обработке заказа.
type ProcessedOrder struct {
	OrderID     int64     `json:"orderID"`
	ProcessedAt time.Time `json:"processTime"`
	ProcessorID int64     `json:"processorID"`
}

// SpotOrder — связь "площадка входит в заказ".
type SpotOrder struct {
	OrderID int64 `json:"orderID"`
	SpotID  int64 `json:"spotID"`
}

// ReportStatus описывает статус обращения.
type ReportStatus string

const (
	ReportStatusUnexamined ReportStatus = "unexamined"
	ReportStatusExamined   ReportStatus = "examined"
)

// Report представляет обращение о проблеме с площадкой.
type Report struct {
	ID        int64        `json:"rID"`
	SpotID    *int64       `json:"spotID"`
	Content   string       `json:"content"`
	Status    ReportStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
}

// AccountRole описывает роль учётной записи панели управления.
type AccountRole string

const (
	AccountRoleCustomer AccountRole = "customer"
	AccountRoleSalesman AccountRole = "salesman"
	AccountRoleOwner    AccountRole = "owner"
	AccountRoleOandM    AccountRole = "oandm"
)

// Account — учётная запись панели управления. Роль не проверяется сервером
// при обращениях к API, это справочные данные для клиента.
type Account struct {
	ID         int64       `json:"accountID"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Role       AccountRole `json:"role"`
	CustomerID *int64      `json:"cID"`
}
