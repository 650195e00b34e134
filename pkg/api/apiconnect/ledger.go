package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

const (
	LedgerServiceCreateGroupProcedure    = "/splitledger.v1.LedgerService/CreateGroup"
	LedgerServiceListGroupsProcedure     = "/splitledger.v1.LedgerService/ListGroups"
	LedgerServiceAddMemberProcedure      = "/splitledger.v1.LedgerService/AddMember"
	LedgerServiceRecordExpenseProcedure  = "/splitledger.v1.LedgerService/RecordExpense"
	LedgerServiceRecordFromTextProcedure = "/splitledger.v1.LedgerService/RecordFromText"
	LedgerServiceSetCategoryProcedure    = "/splitledger.v1.LedgerService/SetCategory"
	LedgerServiceGetDashboardProcedure   = "/splitledger.v1.LedgerService/GetDashboard"
	LedgerServiceGetStatementProcedure   = "/splitledger.v1.LedgerService/GetStatement"
)

// LedgerServiceHandler is an implementation of the splitledger.v1.LedgerService service.
type LedgerServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RecordExpense(context.Context, *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.ExpenseResponse], error)
	RecordFromText(context.Context, *connect.Request[api.RecordFromTextRequest]) (*connect.Response[api.ExpenseResponse], error)
	SetCategory(context.Context, *connect.Request[api.SetCategoryRequest]) (*connect.Response[api.ExpenseResponse], error)
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
	GetStatement(context.Context, *connect.Request[api.GetStatementRequest]) (*connect.Response[api.GetStatementResponse], error)
}

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient = LedgerServiceHandler

// NewLedgerServiceClient constructs a client for the splitledger.v1.LedgerService service.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ledgerServiceClient{
		createGroup: connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](
			httpClient, baseURL+LedgerServiceCreateGroupProcedure, opts...),
		listGroups: connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](
			httpClient, baseURL+LedgerServiceListGroupsProcedure, opts...),
		addMember: connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](
			httpClient, baseURL+LedgerServiceAddMemberProcedure, opts...),
		recordExpense: connect.NewClient[api.RecordExpenseRequest, api.ExpenseResponse](
			httpClient, baseURL+LedgerServiceRecordExpenseProcedure, opts...),
		recordFromText: connect.NewClient[api.RecordFromTextRequest, api.ExpenseResponse](
			httpClient, baseURL+LedgerServiceRecordFromTextProcedure, opts...),
		setCategory: connect.NewClient[api.SetCategoryRequest, api.ExpenseResponse](
			httpClient, baseURL+LedgerServiceSetCategoryProcedure, opts...),
		getDashboard: connect.NewClient[api.GetDashboardRequest, api.GetDashboardResponse](
			httpClient, baseURL+LedgerServiceGetDashboardProcedure, opts...),
		getStatement: connect.NewClient[api.GetStatementRequest, api.GetStatementResponse](
			httpClient, baseURL+LedgerServiceGetStatementProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	createGroup    *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	listGroups     *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember      *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	recordExpense  *connect.Client[api.RecordExpenseRequest, api.ExpenseResponse]
	recordFromText *connect.Client[api.RecordFromTextRequest, api.ExpenseResponse]
	setCategory    *connect.Client[api.SetCategoryRequest, api.ExpenseResponse]
	getDashboard   *connect.Client[api.GetDashboardRequest, api.GetDashboardResponse]
	getStatement   *connect.Client[api.GetStatementRequest, api.GetStatementResponse]
}

func (c *ledgerServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordExpense(ctx context.Context, req *connect.Request[api.RecordExpenseRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.recordExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RecordFromText(ctx context.Context, req *connect.Request[api.RecordFromTextRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.recordFromText.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SetCategory(ctx context.Context, req *connect.Request[api.SetCategoryRequest]) (*connect.Response[api.ExpenseResponse], error) {
	return c.setCategory.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetStatement(ctx context.Context, req *connect.Request[api.GetStatementRequest]) (*connect.Response[api.GetStatementResponse], error) {
	return c.getStatement.CallUnary(ctx, req)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handlers := map[string]http.Handler{
		LedgerServiceCreateGroupProcedure:    connect.NewUnaryHandler(LedgerServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		LedgerServiceListGroupsProcedure:     connect.NewUnaryHandler(LedgerServiceListGroupsProcedure, svc.ListGroups, opts...),
		LedgerServiceAddMemberProcedure:      connect.NewUnaryHandler(LedgerServiceAddMemberProcedure, svc.AddMember, opts...),
		LedgerServiceRecordExpenseProcedure:  connect.NewUnaryHandler(LedgerServiceRecordExpenseProcedure, svc.RecordExpense, opts...),
		LedgerServiceRecordFromTextProcedure: connect.NewUnaryHandler(LedgerServiceRecordFromTextProcedure, svc.RecordFromText, opts...),
		LedgerServiceSetCategoryProcedure:    connect.NewUnaryHandler(LedgerServiceSetCategoryProcedure, svc.SetCategory, opts...),
		LedgerServiceGetDashboardProcedure:   connect.NewUnaryHandler(LedgerServiceGetDashboardProcedure, svc.GetDashboard, opts...),
		LedgerServiceGetStatementProcedure:   connect.NewUnaryHandler(LedgerServiceGetStatementProcedure, svc.GetStatement, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}
