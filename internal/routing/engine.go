// Package routing assigns every classified email to exactly one team member.
// Rules are evaluated in a fixed precedence order and each decision carries
// the reason code and the value that triggered it, so a routing outcome can
// always be explained after the fact.
package routing

import (
	"strings"

	"github.com/floworx/triage-agent/internal/types"
)

// Engine routes classified email for one business.
type Engine struct {
	team         *types.Team
	defaultName  string
	defaultEmail string
}

// NewEngine creates a routing engine. The default recipient is required;
// it is the terminal rule and guarantees every message gets an assignee.
func NewEngine(team *types.Team, defaultName, defaultEmail string) (*Engine, error) {
	if defaultEmail == "" {
		return nil, ErrNoDefaultRecipient
	}
	if team == nil {
		team = &types.Team{}
	}
	return &Engine{team: team, defaultName: defaultName, defaultEmail: defaultEmail}, nil
}

// Route produces the routing decision for a classified message.
// Precedence: supplier owner, urgent on-call, classifier-matched manager,
// specialty keyword, default.
func (e *Engine) Route(msg *types.EmailMessage, cls *types.ClassificationResult) *types.RoutingDecision {
	if msg != nil {
		if supplier := e.team.SupplierForDomain(msg.From.Domain()); supplier != nil {
			return e.routeSupplier(supplier, msg.From.Domain())
		}
	}
	// The classifier can flag supplier mail the domain table missed
	// (e.g. a vendor writing from a personal address).
	if cls != nil && cls.IsSupplier && cls.MatchedEntity != "" {
		for i := range e.team.Suppliers {
			if e.team.Suppliers[i].Name == cls.MatchedEntity {
				return e.routeSupplier(&e.team.Suppliers[i], "classifier:"+cls.MatchedEntity)
			}
		}
	}

	if cls != nil && cls.Urgency == types.UrgencyHigh {
		if onCall := e.team.OnCallManager(); onCall != nil {
			return &types.RoutingDecision{
				AssigneeName:  onCall.Name,
				AssigneeEmail: onCall.Email,
				Reason:        types.RouteReasonUrgentOnCall,
			}
		}
	}

	if cls != nil && !cls.IsSupplier && cls.MatchedEntity != "" {
		if m := e.team.ManagerByName(cls.MatchedEntity); m != nil {
			return &types.RoutingDecision{
				AssigneeName:  m.Name,
				AssigneeEmail: m.Email,
				Reason:        types.RouteReasonManagerSpecialty,
				MatchedOn:     "classifier:" + cls.MatchedEntity,
			}
		}
	}

	if msg != nil {
		text := strings.ToLower(msg.Subject + "\n" + msg.BodyText)
		for i := range e.team.Managers {
			m := &e.team.Managers[i]
			for _, specialty := range m.Specialties {
				if specialty != "" && strings.Contains(text, strings.ToLower(specialty)) {
					return &types.RoutingDecision{
						AssigneeName:  m.Name,
						AssigneeEmail: m.Email,
						Reason:        types.RouteReasonManagerSpecialty,
						MatchedOn:     specialty,
					}
				}
			}
		}
	}

	return &types.RoutingDecision{
		AssigneeName:  e.defaultName,
		AssigneeEmail: e.defaultEmail,
		Reason:        types.RouteReasonDefault,
	}
}

// routeSupplier routes vendor mail to the supplier's owner, falling back to
// the default recipient when no owner is configured.
func (e *Engine) routeSupplier(supplier *types.Supplier, matchedOn string) *types.RoutingDecision {
	if supplier.Owner != "" {
		if m := e.team.ManagerByName(supplier.Owner); m != nil {
			return &types.RoutingDecision{
				AssigneeName:  m.Name,
				AssigneeEmail: m.Email,
				Reason:        types.RouteReasonSupplierDomain,
				MatchedOn:     matchedOn,
			}
		}
	}
	return &types.RoutingDecision{
		AssigneeName:  e.defaultName,
		AssigneeEmail: e.defaultEmail,
		Reason:        types.RouteReasonSupplierDomain,
		MatchedOn:     matchedOn,
	}
}
