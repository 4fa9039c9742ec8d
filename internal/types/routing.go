package types

// Routing reason codes. Every decision carries exactly one.
const (
	RouteReasonSupplierDomain   = "supplier_domain"   // sender domain matched a supplier
	RouteReasonManagerSpecialty = "manager_specialty" // keyword matched a manager specialty
	RouteReasonUrgentOnCall     = "urgent_on_call"    // high urgency routed to on-call manager
	RouteReasonDefault          = "default"           // no rule matched, default recipient
)

// RoutingDecision assigns a classified email to a team member.
type RoutingDecision struct {
	AssigneeName  string `json:"assignee_name"`
	AssigneeEmail string `json:"assignee_email"`
	Reason        string `json:"reason"`
	MatchedOn     string `json:"matched_on,omitempty"` // the domain or keyword that triggered the rule
}
