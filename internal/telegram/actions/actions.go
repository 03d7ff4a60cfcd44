package actions

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is one decoded inline-button press. Callback data strings are parsed
// into this closed set once, at the transport boundary; flows only ever see
// typed variants.
type Action interface {
	// Data renders the action back into callback data for keyboard buttons.
	Data() string
}

// Menu openers and other parameterless actions.
type (
	MainMenu         struct{}
	BuyMenu          struct{}
	MyConfigs        struct{}
	Profile          struct{}
	ChangeLang       struct{}
	SupportMenu      struct{}
	AdminPanel       struct{}
	AdminAddPlan     struct{}
	AdminListPlans   struct{}
	AdminEndpoints   struct{}
	AdminAddEndpoint struct{}
	CustomizeName    struct{}
	SkipName         struct{}
)

func (MainMenu) Data() string         { return "main_menu" }
func (BuyMenu) Data() string          { return "buy_menu" }
func (MyConfigs) Data() string        { return "my_configs" }
func (Profile) Data() string          { return "profile" }
func (ChangeLang) Data() string       { return "change_lang" }
func (SupportMenu) Data() string      { return "support_menu" }
func (AdminPanel) Data() string       { return "admin_panel" }
func (AdminAddPlan) Data() string     { return "admin_add_plan" }
func (AdminListPlans) Data() string   { return "admin_list_plans" }
func (AdminEndpoints) Data() string   { return "admin_endpoints" }
func (AdminAddEndpoint) Data() string { return "admin_add_ep" }
func (CustomizeName) Data() string    { return "name_custom" }
func (SkipName) Data() string         { return "name_skip" }

type SelectProto struct {
	Protocol string
}

func (a SelectProto) Data() string { return "select_proto_" + a.Protocol }

type SelectPlan struct {
	PlanID int64
}

func (a SelectPlan) Data() string { return fmt.Sprintf("select_plan_%d", a.PlanID) }

// PayCard and PayCrypto carry the plan and the chosen endpoint (0 when none).
type PayCard struct {
	PlanID     int64
	EndpointID int64
}

func (a PayCard) Data() string { return fmt.Sprintf("pay_card_%d_%d", a.PlanID, a.EndpointID) }

type PayCrypto struct {
	PlanID     int64
	EndpointID int64
}

func (a PayCrypto) Data() string { return fmt.Sprintf("pay_crypto_%d_%d", a.PlanID, a.EndpointID) }

type ApproveOrder struct {
	OrderID int64
}

func (a ApproveOrder) Data() string { return fmt.Sprintf("approve_order_%d", a.OrderID) }

type RejectOrder struct {
	OrderID int64
}

func (a RejectOrder) Data() string { return fmt.Sprintf("reject_order_%d", a.OrderID) }

type ManualConfig struct {
	OrderID int64
}

func (a ManualConfig) Data() string { return fmt.Sprintf("manual_config_%d", a.OrderID) }

type AddPlanProto struct {
	Protocol string
}

func (a AddPlanProto) Data() string { return "addplan_proto_" + a.Protocol }

type EditPlan struct {
	PlanID int64
}

func (a EditPlan) Data() string { return fmt.Sprintf("admin_editplan_%d", a.PlanID) }

type EditPlanField struct {
	PlanID int64
	Field  string
}

func (a EditPlanField) Data() string {
	return fmt.Sprintf("admin_editfield_%d_%s", a.PlanID, a.Field)
}

// TogglePlan sets the plan's is_active to Active. Keyboards render it with the
// inverse of the current value, so the refreshed button always flips back.
type TogglePlan struct {
	PlanID int64
	Active bool
}

func (a TogglePlan) Data() string {
	return fmt.Sprintf("admin_toggle_%d_%t", a.PlanID, a.Active)
}

type ToggleEndpoint struct {
	EndpointID int64
	Active     bool
}

func (a ToggleEndpoint) Data() string {
	return fmt.Sprintf("admin_ep_toggle_%d_%t", a.EndpointID, a.Active)
}

type DownloadWGConfig struct {
	SubscriptionID int64
	EndpointID     int64
}

func (a DownloadWGConfig) Data() string {
	return fmt.Sprintf("wgconf_%d_%d", a.SubscriptionID, a.EndpointID)
}

type SetLanguage struct {
	Lang string
}

func (a SetLanguage) Data() string { return "setlang_" + a.Lang }

// Parse decodes callback data into an Action. Unknown or malformed data
// returns false; the router drops such presses.
func Parse(data string) (Action, bool) {
	switch data {
	case "main_menu":
		return MainMenu{}, true
	case "buy_menu":
		return BuyMenu{}, true
	case "my_configs":
		return MyConfigs{}, true
	case "profile":
		return Profile{}, true
	case "change_lang":
		return ChangeLang{}, true
	case "support_menu":
		return SupportMenu{}, true
	case "admin_panel":
		return AdminPanel{}, true
	case "admin_add_plan":
		return AdminAddPlan{}, true
	case "admin_list_plans":
		return AdminListPlans{}, true
	case "admin_endpoints":
		return AdminEndpoints{}, true
	case "admin_add_ep":
		return AdminAddEndpoint{}, true
	case "name_custom":
		return CustomizeName{}, true
	case "name_skip":
		return SkipName{}, true
	}

	for prefix, parse := range parsers {
		if rest, ok := strings.CutPrefix(data, prefix); ok {
			return parse(rest)
		}
	}
	return nil, false
}

var parsers = map[string]func(rest string) (Action, bool){
	"select_proto_": func(rest string) (Action, bool) {
		if rest == "" {
			return nil, false
		}
		return SelectProto{Protocol: rest}, true
	},
	"select_plan_": func(rest string) (Action, bool) {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, false
		}
		return SelectPlan{PlanID: id}, true
	},
	"pay_card_": func(rest string) (Action, bool) {
		planID, endpointID, ok := parsePayIDs(rest)
		if !ok {
			return nil, false
		}
		return PayCard{PlanID: planID, EndpointID: endpointID}, true
	},
	"pay_crypto_": func(rest string) (Action, bool) {
		planID, endpointID, ok := parsePayIDs(rest)
		if !ok {
			return nil, false
		}
		return PayCrypto{PlanID: planID, EndpointID: endpointID}, true
	},
	"approve_order_": func(rest string) (Action, bool) {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, false
		}
		return ApproveOrder{OrderID: id}, true
	},
	"reject_order_": func(rest string) (Action, bool) {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, false
		}
		return RejectOrder{OrderID: id}, true
	},
	"manual_config_": func(rest string) (Action, bool) {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, false
		}
		return ManualConfig{OrderID: id}, true
	},
	"addplan_proto_": func(rest string) (Action, bool) {
		if rest == "" {
			return nil, false
		}
		return AddPlanProto{Protocol: rest}, true
	},
	"admin_editplan_": func(rest string) (Action, bool) {
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return nil, false
		}
		return EditPlan{PlanID: id}, true
	},
	"admin_editfield_": func(rest string) (Action, bool) {
		// field names contain underscores, split once after the id
		parts := strings.SplitN(rest, "_", 2)
		if len(parts) != 2 || parts[1] == "" {
			return nil, false
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, false
		}
		return EditPlanField{PlanID: id, Field: parts[1]}, true
	},
	"admin_toggle_": func(rest string) (Action, bool) {
		id, active, ok := parseToggle(rest)
		if !ok {
			return nil, false
		}
		return TogglePlan{PlanID: id, Active: active}, true
	},
	"admin_ep_toggle_": func(rest string) (Action, bool) {
		id, active, ok := parseToggle(rest)
		if !ok {
			return nil, false
		}
		return ToggleEndpoint{EndpointID: id, Active: active}, true
	},
	"wgconf_": func(rest string) (Action, bool) {
		parts := strings.Split(rest, "_")
		if len(parts) != 2 {
			return nil, false
		}
		subID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, false
		}
		epID, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, false
		}
		return DownloadWGConfig{SubscriptionID: subID, EndpointID: epID}, true
	},
	"setlang_": func(rest string) (Action, bool) {
		if rest == "" {
			return nil, false
		}
		return SetLanguage{Lang: rest}, true
	},
}

func parsePayIDs(rest string) (planID, endpointID int64, ok bool) {
	parts := strings.Split(rest, "_")
	if len(parts) != 1 && len(parts) != 2 {
		return 0, 0, false
	}

	planID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	// older keyboards carried only the plan id
	if len(parts) == 2 {
		endpointID, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}
	return planID, endpointID, true
}

func parseToggle(rest string) (id int64, active, ok bool) {
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return 0, false, false
	}

	id, err := strconv.ParseInt(rest[:idx], 10, 64)
	if err != nil {
		return 0, false, false
	}
	active, err = strconv.ParseBool(rest[idx+1:])
	if err != nil {
		return 0, false, false
	}
	return id, active, true
}
