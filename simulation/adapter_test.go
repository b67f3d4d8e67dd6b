package simulation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/internal/mytesting"
	"github.com/nexuscore/negotiator/llm"
	"github.com/nexuscore/negotiator/simulation"
	"github.com/stretchr/testify/suite"
)

const personaYaml = `id: techflow-saas
name: Alex Chen of TechFlow
style: Collaborative
negotiation_tone: professional but firm
goals:
  - Close the deal within this quarter
  - Keep annual price above $90,000
constraints:
  - Liability cap must not exceed 12 months of fees
  - No unlimited indemnification
`

type AdapterTestSuite struct {
	mytesting.Suite

	adapter simulation.Adapter
	mock    *llm.MockClient
}

func (s *AdapterTestSuite) SetupTest() {
	dir := s.T().TempDir()
	s.Require().NoError(os.WriteFile(filepath.Join(dir, "techflow-saas.yaml"), []byte(personaYaml), 0o644))
	s.T().Setenv("PERSONAS_DIR", dir)

	s.Suite.SetupTest()

	s.mock = &llm.MockClient{TextReply: "We can agree to a 12 month cap."}
	din.SetT[llm.Client](s.Container, s.mock)

	s.adapter = din.MustGetT[simulation.Adapter](s.Container)
}

func (s *AdapterTestSuite) TestSimulateCounterparty() {
	history := []entity.Message{
		{Role: entity.RoleBuyer, Content: "We propose a liability cap of 6 months."},
		{Role: entity.RoleSupplier, Content: "That is too low for us."},
	}

	reply, err := s.adapter.SimulateCounterparty(s.Context, "techflow-saas", history, "Would 9 months work?")
	s.Require().NoError(err)
	s.Require().Equal("We can agree to a 12 month cap.", reply)

	s.Require().Len(s.mock.Calls, 1)
	s.Require().Contains(s.mock.Calls[0], "Alex Chen of TechFlow")
	s.Require().Contains(s.mock.Calls[0], "Liability cap must not exceed 12 months of fees")
	s.Require().Contains(s.mock.Calls[0], "Latest Proposal/Message: Would 9 months work?")
}

func (s *AdapterTestSuite) TestUnknownPersona() {
	_, err := s.adapter.SimulateCounterparty(s.Context, "nobody", nil, "Hello")
	s.Require().ErrorIs(err, errors.ErrNotFound)
}

func (s *AdapterTestSuite) TestInvalidPersonaID() {
	_, err := s.adapter.SimulateCounterparty(s.Context, "../escape", nil, "Hello")
	s.Require().ErrorIs(err, errors.ErrInvalidParams)
}

func TestAdapter(t *testing.T) {
	suite.Run(t, new(AdapterTestSuite))
}

func TestLoadPersona(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "techflow-saas.yaml"), []byte(personaYaml), 0o644); err != nil {
		t.Fatal(err)
	}

	persona, err := simulation.LoadPersona(dir, "techflow-saas")
	if err != nil {
		t.Fatal(err)
	}
	if persona.Name != "Alex Chen of TechFlow" {
		t.Errorf("unexpected name %q", persona.Name)
	}
	if len(persona.Goals) != 2 || len(persona.Constraints) != 2 {
		t.Errorf("unexpected goals/constraints: %+v", persona)
	}
}
