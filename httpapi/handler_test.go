package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jcooky/go-din"
	"github.com/nexuscore/negotiator/entity"
	"github.com/nexuscore/negotiator/errors"
	"github.com/nexuscore/negotiator/executor"
	"github.com/nexuscore/negotiator/httpapi"
	"github.com/nexuscore/negotiator/internal/db"
	"github.com/nexuscore/negotiator/internal/mytesting"
	"github.com/nexuscore/negotiator/llm"
	"github.com/nexuscore/negotiator/workflow"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type fixedExecutor struct {
	candidate entity.DecisionContext
	err       error
}

func (e *fixedExecutor) Execute(ctx context.Context, thread *entity.Thread, history []entity.Message, input, priorFeedback string) (*entity.DecisionContext, error) {
	if e.err != nil {
		return nil, e.err
	}
	candidate := e.candidate
	candidate.TurnID = "turn-1"
	return &candidate, nil
}

type HandlerTestSuite struct {
	mytesting.Suite

	server   *httptest.Server
	executor *fixedExecutor
	DB       *gorm.DB
}

func (s *HandlerTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.executor = &fixedExecutor{
		candidate: entity.DecisionContext{
			Strategy:  executor.DecisionAccept,
			Reasoning: "fine",
			Message:   "Agreed.",
			Risk:      5,
		},
	}
	din.SetT[executor.Executor](s.Container, s.executor)
	din.SetT[llm.Client](s.Container, llm.NewMockClient())

	s.DB = din.MustGet[*gorm.DB](s.Container, db.Key)
	s.server = httptest.NewServer(httpapi.NewHandler(s.Container))
}

func (s *HandlerTestSuite) TearDownTest() {
	s.server.Close()
	s.Suite.TearDownTest()
}

func (s *HandlerTestSuite) postJSON(path string, body any) *http.Response {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(raw))
	s.Require().NoError(err)
	return resp
}

func (s *HandlerTestSuite) decodeSnapshot(resp *http.Response) *workflow.ThreadSnapshot {
	defer resp.Body.Close()
	var snapshot workflow.ThreadSnapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snapshot))
	return &snapshot
}

func (s *HandlerTestSuite) createThread() *workflow.ThreadSnapshot {
	supplier := entity.Supplier{Name: "Acme Metals"}
	s.Require().NoError(s.DB.Create(&supplier).Error)
	contract := entity.Contract{SupplierID: supplier.ID, Title: "MSA 2026", Status: "draft"}
	s.Require().NoError(s.DB.Create(&contract).Error)

	resp := s.postJSON("/threads", map[string]any{
		"contract_id": contract.ID,
		"supplier_id": supplier.ID,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	return s.decodeSnapshot(resp)
}

func (s *HandlerTestSuite) TestHealth() {
	resp, err := http.Get(s.server.URL + "/health")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerTestSuite) TestNegotiateRoundTrip() {
	thr := s.createThread()

	resp := s.postJSON(fmt.Sprintf("/threads/%d/negotiate", thr.ID), map[string]any{
		"text":       "Can we confirm delivery terms?",
		"actor_role": entity.RoleSupplier,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	snapshot := s.decodeSnapshot(resp)
	s.Require().Equal(entity.ThreadStatusActive, snapshot.Status)
	s.Require().Len(snapshot.Messages, 2)
	s.Require().Equal("MSA 2026", snapshot.ContractTitle)
}

func (s *HandlerTestSuite) TestPauseAndResume() {
	thr := s.createThread()

	s.executor.candidate = entity.DecisionContext{
		Strategy:  executor.DecisionCounter,
		Reasoning: "cap liability",
		Redline:   "Liability capped at 12 months of fees.",
		Message:   "Proposed Redline (COUNTER):\nLiability capped at 12 months of fees.",
		Risk:      30,
	}

	resp := s.postJSON(fmt.Sprintf("/threads/%d/negotiate", thr.ID), map[string]any{
		"text": "We need unlimited liability.", "actor_role": entity.RoleSupplier,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	snapshot := s.decodeSnapshot(resp)
	s.Require().Equal(entity.ThreadStatusPaused, snapshot.Status)
	s.Require().NotNil(snapshot.CurrentContext)

	// Negotiating while paused conflicts.
	resp = s.postJSON(fmt.Sprintf("/threads/%d/negotiate", thr.ID), map[string]any{
		"text": "Hello?", "actor_role": entity.RoleSupplier,
	})
	resp.Body.Close()
	s.Require().Equal(http.StatusConflict, resp.StatusCode)

	resp = s.postJSON(fmt.Sprintf("/threads/%d/resume", thr.ID), map[string]any{
		"action": "APPROVED",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	snapshot = s.decodeSnapshot(resp)
	s.Require().Equal(entity.ThreadStatusActive, snapshot.Status)
	s.Require().Nil(snapshot.CurrentContext)
}

func (s *HandlerTestSuite) TestErrorMapping() {
	resp, err := http.Get(s.server.URL + "/threads/9999")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)

	thr := s.createThread()

	resp = s.postJSON(fmt.Sprintf("/threads/%d/resume", thr.ID), map[string]any{
		"action": "APPROVED",
	})
	resp.Body.Close()
	s.Require().Equal(http.StatusConflict, resp.StatusCode)

	resp = s.postJSON(fmt.Sprintf("/threads/%d/negotiate", thr.ID), map[string]any{
		"text": "hi", "actor_role": "observer",
	})
	resp.Body.Close()
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)

	s.executor.err = errors.Wrapf(errors.ErrExecutorUnavailable, "model endpoint down")
	resp = s.postJSON(fmt.Sprintf("/threads/%d/negotiate", thr.ID), map[string]any{
		"text": "hi", "actor_role": entity.RoleSupplier,
	})
	resp.Body.Close()
	s.Require().Equal(http.StatusServiceUnavailable, resp.StatusCode)
}

func (s *HandlerTestSuite) TestListThreads() {
	s.createThread()
	s.createThread()

	resp, err := http.Get(s.server.URL + "/threads")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var snapshots []workflow.ThreadSnapshot
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&snapshots))
	s.Require().GreaterOrEqual(len(snapshots), 2)
}

func (s *HandlerTestSuite) TestSimulateUnknownPersona() {
	resp := s.postJSON("/simulate", map[string]any{
		"persona_id":      "nobody",
		"latest_proposal": "Hello",
	})
	resp.Body.Close()
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
