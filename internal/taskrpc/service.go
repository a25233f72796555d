// Package taskrpc declares the gophtasks.v1.TaskService gRPC service.
//
// Requests and replies are google.protobuf.Struct and google.protobuf.Empty,
// so the service is usable from any gRPC stack without generated stubs. The
// field layout of every message is defined in messages.go.
package taskrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "gophtasks.v1.TaskService"

// Full method names, as seen by interceptors.
const (
	MethodRegister              = "/" + ServiceName + "/Register"
	MethodLogin                 = "/" + ServiceName + "/Login"
	MethodMe                    = "/" + ServiceName + "/Me"
	MethodCreateTask            = "/" + ServiceName + "/CreateTask"
	MethodListTasks             = "/" + ServiceName + "/ListTasks"
	MethodGetTask               = "/" + ServiceName + "/GetTask"
	MethodUpdateTask            = "/" + ServiceName + "/UpdateTask"
	MethodDeleteTask            = "/" + ServiceName + "/DeleteTask"
	MethodAttachmentUploadURL   = "/" + ServiceName + "/AttachmentUploadURL"
	MethodAttachmentDownloadURL = "/" + ServiceName + "/AttachmentDownloadURL"
	MethodPing                  = "/" + ServiceName + "/Ping"
)

// TaskServiceServer is the server API for gophtasks.v1.TaskService.
type TaskServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Me(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	CreateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTasks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTask(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	AttachmentUploadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AttachmentDownloadURL(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
}

func RegisterTaskServiceServer(s grpc.ServiceRegistrar, srv TaskServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func newStruct() *structpb.Struct { return new(structpb.Struct) }
func newEmpty() *emptypb.Empty    { return new(emptypb.Empty) }

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req proto.Message, Resp proto.Message](
	method string,
	newReq func() Req,
	call func(TaskServiceServer, context.Context, Req) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(TaskServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(TaskServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for gophtasks.v1.TaskService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TaskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(MethodRegister, newStruct, TaskServiceServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(MethodLogin, newStruct, TaskServiceServer.Login)},
		{MethodName: "Me", Handler: unaryHandler(MethodMe, newEmpty, TaskServiceServer.Me)},
		{MethodName: "CreateTask", Handler: unaryHandler(MethodCreateTask, newStruct, TaskServiceServer.CreateTask)},
		{MethodName: "ListTasks", Handler: unaryHandler(MethodListTasks, newStruct, TaskServiceServer.ListTasks)},
		{MethodName: "GetTask", Handler: unaryHandler(MethodGetTask, newStruct, TaskServiceServer.GetTask)},
		{MethodName: "UpdateTask", Handler: unaryHandler(MethodUpdateTask, newStruct, TaskServiceServer.UpdateTask)},
		{MethodName: "DeleteTask", Handler: unaryHandler(MethodDeleteTask, newStruct, TaskServiceServer.DeleteTask)},
		{MethodName: "AttachmentUploadURL", Handler: unaryHandler(MethodAttachmentUploadURL, newStruct, TaskServiceServer.AttachmentUploadURL)},
		{MethodName: "AttachmentDownloadURL", Handler: unaryHandler(MethodAttachmentDownloadURL, newStruct, TaskServiceServer.AttachmentDownloadURL)},
		{MethodName: "Ping", Handler: unaryHandler(MethodPing, newEmpty, TaskServiceServer.Ping)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gophtasks/v1/tasks.proto",
}
