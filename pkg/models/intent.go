package models

// IntentType names the kind of chat instruction an Intent carries.
type IntentType string

const (
	IntentCreateAllocation IntentType = "CREATE_ALLOCATION"
	IntentAddEmployees     IntentType = "ADD_EMPLOYEES"
	IntentReplaceEmployee  IntentType = "REPLACE_EMPLOYEE"
	IntentAskExplanation   IntentType = "ASK_EXPLANATION"
	IntentUnknown          IntentType = "UNKNOWN"
)

// Intent is the structured form of a chat instruction. Each variant carries
// only the fields its handler uses.
type Intent interface {
	Type() IntentType
}

// RoleRequest is a role name with a requested count. Count <= 0 means unspecified.
type RoleRequest struct {
	RoleName string `json:"roleName"`
	Count    int    `json:"count"`
}

// CreateAllocationIntent asks for a fresh proposal, optionally overriding roles.
type CreateAllocationIntent struct {
	Roles  []RoleRequest
	Skills []string
}

// AddEmployeesIntent asks to add people to one or more roles.
type AddEmployeesIntent struct {
	Roles  []RoleRequest
	Skills []string
	// Incremental is set for "one more"/"another": Count is a delta, not a target.
	Incremental bool
	// AutoSuggestCount lets the system decide how many to add.
	AutoSuggestCount bool
}

// ReplaceEmployeeIntent asks to swap a named person for someone else.
type ReplaceEmployeeIntent struct {
	TargetEmployeeName string
	// Role optionally names an alternate role to draw the replacement from.
	Role   string
	Skills []string
}

// AskExplanationIntent asks the assistant to explain the current proposal.
type AskExplanationIntent struct {
	Question string
}

// UnknownIntent is anything the extractor could not classify.
type UnknownIntent struct {
	Raw string
}

func (CreateAllocationIntent) Type() IntentType { return IntentCreateAllocation }
func (AddEmployeesIntent) Type() IntentType     { return IntentAddEmployees }
func (ReplaceEmployeeIntent) Type() IntentType  { return IntentReplaceEmployee }
func (AskExplanationIntent) Type() IntentType   { return IntentAskExplanation }
func (UnknownIntent) Type() IntentType          { return IntentUnknown }

// ChatMessage is one turn of conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
