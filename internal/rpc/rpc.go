// Package rpc exposes the engine over gRPC. Messages are structpb values so
// the service needs no generated code; the descriptor below is what
// protoc-gen-go-grpc would emit for:
//
//	service Engine {
//	  rpc Command(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc State(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc Plan(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
package rpc

import (
	"context"
	"errors"
	"sync"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/khwan789/KimchiClicker/internal/engine"
	"github.com/khwan789/KimchiClicker/internal/shop"
)

const ServiceName = "kimchi.Engine"

// EngineServer is the server API for the Engine service.
type EngineServer interface {
	Command(context.Context, *structpb.Struct) (*structpb.Struct, error)
	State(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Plan(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Server serves one engine. mu is shared with every other host of the same
// engine.
type Server struct {
	mu  sync.Locker
	eng *engine.Engine
}

func NewServer(eng *engine.Engine, mu sync.Locker) *Server {
	return &Server{mu: mu, eng: eng}
}

// Register attaches the service to s.
func Register(s grpc.ServiceRegistrar, srv EngineServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Command runs {"name", "index", "n", "id"} and answers
// {"applied", "state"}.
func (s *Server) Command(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	f := req.GetFields()
	name := f["name"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "missing command name")
	}
	args := engine.Args{
		Index: int(f["index"].GetNumberValue()),
		N:     int64(f["n"].GetNumberValue()),
		ID:    f["id"].GetStringValue(),
	}

	s.mu.Lock()
	applied, err := s.eng.Dispatch(name, args)
	snap := s.eng.Snapshot()
	s.mu.Unlock()
	if errors.Is(err, engine.ErrUnknownCommand) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	state, err := toStruct(snap)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"applied": structpb.NewBoolValue(applied),
		"state":   structpb.NewStructValue(state),
	}}, nil
}

func (s *Server) State(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	s.mu.Lock()
	snap := s.eng.Snapshot()
	s.mu.Unlock()
	return toStruct(snap)
}

// Plan answers the cheapest key purchase for {"target"}.
func (s *Server) Plan(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v := req.GetFields()["target"].GetNumberValue()
	if !(v >= 1 && v <= shop.MaxTargetKeys) {
		return nil, status.Errorf(codes.InvalidArgument, "target must be in [1,%d]", shop.MaxTargetKeys)
	}
	target := int(v)
	s.mu.Lock()
	plan := s.eng.PlanKeyPurchase(target)
	s.mu.Unlock()
	return toStruct(plan)
}

// toStruct goes through JSON so the struct tags decide the field names.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func commandHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Command(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Command"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Command(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func stateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).State(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/State"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).State(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func planHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).Plan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Plan"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).Plan(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Command", Handler: commandHandler},
		{MethodName: "State", Handler: stateHandler},
		{MethodName: "Plan", Handler: planHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "kimchi.proto",
}

// Client calls a remote Engine service.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Command runs a named command remotely and returns whether it applied plus
// the resulting snapshot.
func (c *Client) Command(ctx context.Context, name string, a engine.Args) (bool, *structpb.Struct, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"name":  structpb.NewStringValue(name),
		"index": structpb.NewNumberValue(float64(a.Index)),
		"n":     structpb.NewNumberValue(float64(a.N)),
		"id":    structpb.NewStringValue(a.ID),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Command", req, out); err != nil {
		return false, nil, err
	}
	f := out.GetFields()
	return f["applied"].GetBoolValue(), f["state"].GetStructValue(), nil
}

func (c *Client) State(ctx context.Context) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/State", &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Plan(ctx context.Context, target int) (*structpb.Struct, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"target": structpb.NewNumberValue(float64(target)),
	}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Plan", req, out); err != nil {
		return nil, err
	}
	return out, nil
}
