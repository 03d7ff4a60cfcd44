package flows

// Per-flow conversation data. Each struct is what the matching flow needs to
// carry between steps; the state manager persists them as JSON.

type RegisterFlowData struct {
	InitialLang string `json:"initial_lang"`
}

type BuyFlowData struct {
	Protocol   string `json:"protocol"`
	PlanID     int64  `json:"plan_id"`
	EndpointID int64  `json:"endpoint_id"`
	ConfigName string `json:"config_name"`
	Language   string `json:"language"`
}

type PaymentFlowData struct {
	PlanID     int64  `json:"plan_id"`
	EndpointID int64  `json:"endpoint_id"`
	ConfigName string `json:"config_name"`
	Language   string `json:"language"`
}

type ManualProvisionFlowData struct {
	OrderID int64 `json:"order_id"`
}

type AddPlanFlowData struct {
	ServerType   string  `json:"server_type"`
	DurationDays int     `json:"duration_days"`
	DataLimitGB  float64 `json:"data_limit_gb"`
	PriceIRR     float64 `json:"price_irr"`
}

type EditPlanFlowData struct {
	PlanID int64  `json:"plan_id"`
	Field  string `json:"field"`
}

type AddEndpointFlowData struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type SupportFlowData struct {
	Language string `json:"language"`
}
