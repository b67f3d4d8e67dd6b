package workflow

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/jcooky/go-din"

	"github.com/nexuscore/negotiator/errors"
)

type (
	JsonRpcService struct {
		manager Manager
	}

	CreateThreadRequest struct {
		ContractId uint32 `json:"contract_id"`
		SupplierId uint32 `json:"supplier_id"`
	}

	NegotiateRequest struct {
		ThreadId uint32 `json:"thread_id"`
		Role     string `json:"role" jsonschema:"enum:buyer,supplier"`
		Text     string `json:"text"`
	}

	ResumeRequest struct {
		ThreadId uint32 `json:"thread_id"`
		Action   string `json:"action" jsonschema:"enum:APPROVED,REJECTED"`
		Feedback string `json:"feedback"`
	}

	GetThreadRequest struct {
		ThreadId uint32 `json:"thread_id"`
	}

	CloseThreadRequest struct {
		ThreadId uint32 `json:"thread_id"`
	}

	ListThreadsRequest struct{}

	ListThreadsResponse struct {
		Threads []*ThreadSnapshot `json:"threads"`
	}
)

func (s *JsonRpcService) CreateThread(r *http.Request, args *CreateThreadRequest, reply *ThreadSnapshot) error {
	snapshot, err := s.manager.CreateThread(r.Context(), uint(args.ContractId), uint(args.SupplierId))
	if err != nil {
		return err
	}

	*reply = *snapshot
	return nil
}

func (s *JsonRpcService) Negotiate(r *http.Request, args *NegotiateRequest, reply *ThreadSnapshot) error {
	snapshot, err := s.manager.Negotiate(r.Context(), uint(args.ThreadId), args.Role, args.Text)
	if err != nil {
		return err
	}

	*reply = *snapshot
	return nil
}

func (s *JsonRpcService) Resume(r *http.Request, args *ResumeRequest, reply *ThreadSnapshot) error {
	snapshot, err := s.manager.Resume(r.Context(), uint(args.ThreadId), ResumeAction(args.Action), args.Feedback)
	if err != nil {
		return err
	}

	*reply = *snapshot
	return nil
}

func (s *JsonRpcService) GetThread(r *http.Request, args *GetThreadRequest, reply *ThreadSnapshot) error {
	snapshot, err := s.manager.Snapshot(r.Context(), uint(args.ThreadId))
	if err != nil {
		return err
	}

	*reply = *snapshot
	return nil
}

func (s *JsonRpcService) ListThreads(r *http.Request, _ *ListThreadsRequest, reply *ListThreadsResponse) error {
	snapshots, err := s.manager.ListSnapshots(r.Context())
	if err != nil {
		return err
	}

	reply.Threads = snapshots
	return nil
}

func (s *JsonRpcService) CloseThread(r *http.Request, args *CloseThreadRequest, reply *ThreadSnapshot) error {
	snapshot, err := s.manager.CloseThread(r.Context(), uint(args.ThreadId))
	if err != nil {
		return err
	}

	*reply = *snapshot
	return nil
}

var (
	servicePrefix = "nexuscore.negotiator.workflow.v1"
)

func RegisterJsonRpcService(c *din.Container, server *rpc.Server) error {
	svc := &JsonRpcService{
		manager: din.MustGetT[Manager](c),
	}
	return errors.Wrapf(server.RegisterService(svc, servicePrefix), "failed to register jsonrpc service")
}
