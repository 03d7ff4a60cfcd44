package states

import "time"

type State string

const (
	StateNone State = "none"
	StateDone State = "done"
)

// reg -> user registration (invite gate)
// buy -> user buy config
// pay -> user payment
// aap -> admin add plan
// aep -> admin edit plan
// aae -> admin add endpoint
// amp -> admin manual provision
// sup -> user support

// registration states
const (
	RegWaitInviteCode State = "reg_wt_invite_code"
)

// buy config states
const (
	BuyWaitNameChoice State = "buy_wt_name_choice"
	BuyWaitConfigName State = "buy_wt_config_name"
)

// payment states
const (
	PayWaitScreenshot State = "pay_wt_screenshot"
)

// admin add plan states
const (
	AddPlanWaitDuration  State = "aap_wt_duration"
	AddPlanWaitDataLimit State = "aap_wt_data_limit"
	AddPlanWaitPrice     State = "aap_wt_price"
)

// admin edit plan states
const (
	EditPlanWaitValue State = "aep_wt_value"
)

// admin add endpoint states
const (
	AddEndpointWaitName    State = "aae_wt_name"
	AddEndpointWaitAddress State = "aae_wt_address"
)

// admin manual provision states
const (
	ManualProvisionWaitConfig State = "amp_wt_config"
)

// support states
const (
	SupportWaitMessage State = "sup_wt_message"
)

// Session is one user's persisted conversation slot.
type Session struct {
	ChatID    int64
	Step      State
	FormData  []byte
	UpdatedAt time.Time
}
