package agentclient

import (
	"context"

	"google.golang.org/grpc"
)

const (
	serviceName       = "diskagent.DiskAgent"
	secureEraseMethod = "/diskagent.DiskAgent/SecureEraseDevice"
)

type SecureEraseDeviceRequest struct {
	DeviceId   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type SecureEraseDeviceResponse struct{}

// DiskAgentServer agent 侧实现，供 agent 与测试注册服务
type DiskAgentServer interface {
	SecureEraseDevice(ctx context.Context, req *SecureEraseDeviceRequest) (*SecureEraseDeviceResponse, error)
}

func RegisterDiskAgentServer(s *grpc.Server, srv DiskAgentServer) {
	s.RegisterService(&diskAgentServiceDesc, srv)
}

func secureEraseDeviceHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SecureEraseDeviceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DiskAgentServer).SecureEraseDevice(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: secureEraseMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DiskAgentServer).SecureEraseDevice(ctx, req.(*SecureEraseDeviceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var diskAgentServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DiskAgentServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SecureEraseDevice",
			Handler:    secureEraseDeviceHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diskagent.proto",
}
