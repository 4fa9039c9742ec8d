package routing

import (
	"testing"

	"github.com/floworx/triage-agent/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeam() *types.Team {
	return &types.Team{
		Managers: []types.Manager{
			{Name: "Jen", Email: "jen@thehottubman.com", Specialties: []string{"warranty", "water care"}},
			{Name: "Mike", Email: "mike@thehottubman.com", Specialties: []string{"install"}, OnCall: true},
		},
		Suppliers: []types.Supplier{
			{Name: "Balboa", Domains: []string{"balboa.com"}, Owner: "Mike"},
			{Name: "Aqua-Flo", Domains: []string{"aquaflo.com"}},
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testTeam(), "Office", "office@thehottubman.com")
	require.NoError(t, err)
	return e
}

func TestNewEngine_RequiresDefault(t *testing.T) {
	_, err := NewEngine(testTeam(), "Office", "")
	assert.ErrorIs(t, err, ErrNoDefaultRecipient)
}

func TestRoute_SupplierToOwner(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{From: types.Address{Email: "orders@balboa.com"}}
	d := e.Route(msg, nil)
	assert.Equal(t, "Mike", d.AssigneeName)
	assert.Equal(t, types.RouteReasonSupplierDomain, d.Reason)
	assert.Equal(t, "balboa.com", d.MatchedOn)
}

func TestRoute_SupplierWithoutOwnerToDefault(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{From: types.Address{Email: "billing@aquaflo.com"}}
	d := e.Route(msg, nil)
	assert.Equal(t, "office@thehottubman.com", d.AssigneeEmail)
	assert.Equal(t, types.RouteReasonSupplierDomain, d.Reason)
}

func TestRoute_ClassifierFlaggedSupplier(t *testing.T) {
	e := newTestEngine(t)

	// Vendor writing from a personal address; domain table misses it.
	msg := &types.EmailMessage{From: types.Address{Email: "rep@gmail.com"}}
	cls := &types.ClassificationResult{IsSupplier: true, MatchedEntity: "Balboa"}
	d := e.Route(msg, cls)
	assert.Equal(t, "Mike", d.AssigneeName)
	assert.Equal(t, types.RouteReasonSupplierDomain, d.Reason)
	assert.Equal(t, "classifier:Balboa", d.MatchedOn)
}

func TestRoute_UrgentGoesOnCall(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{From: types.Address{Email: "dave@example.com"}}
	cls := &types.ClassificationResult{Urgency: types.UrgencyHigh}
	d := e.Route(msg, cls)
	assert.Equal(t, "Mike", d.AssigneeName)
	assert.Equal(t, types.RouteReasonUrgentOnCall, d.Reason)
}

func TestRoute_SpecialtyKeyword(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{
		From:     types.Address{Email: "dave@example.com"},
		Subject:  "Warranty claim for my pump",
		BodyText: "It failed after 8 months.",
	}
	cls := &types.ClassificationResult{Urgency: types.UrgencyNormal}
	d := e.Route(msg, cls)
	assert.Equal(t, "Jen", d.AssigneeName)
	assert.Equal(t, types.RouteReasonManagerSpecialty, d.Reason)
	assert.Equal(t, "warranty", d.MatchedOn)
}

func TestRoute_ClassifierMatchedManager(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{From: types.Address{Email: "dave@example.com"}, Subject: "follow up"}
	cls := &types.ClassificationResult{Urgency: types.UrgencyNormal, MatchedEntity: "Jen"}
	d := e.Route(msg, cls)
	assert.Equal(t, "Jen", d.AssigneeName)
	assert.Equal(t, "classifier:Jen", d.MatchedOn)
}

func TestRoute_Default(t *testing.T) {
	e := newTestEngine(t)

	msg := &types.EmailMessage{
		From:     types.Address{Email: "dave@example.com"},
		Subject:  "hello",
		BodyText: "general question",
	}
	d := e.Route(msg, &types.ClassificationResult{Urgency: types.UrgencyNormal})
	assert.Equal(t, "Office", d.AssigneeName)
	assert.Equal(t, types.RouteReasonDefault, d.Reason)

	// Nil inputs still produce a decision.
	d = e.Route(nil, nil)
	require.NotNil(t, d)
	assert.Equal(t, types.RouteReasonDefault, d.Reason)
}
