package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The shopping list service is described by hand: requests and responses are well-known
// wrapper messages, so there is no generated code to carry.
const (
	ServiceName  = "foodgram.ShoppingList"
	ExportMethod = "/" + ServiceName + "/Export"

	HeaderFileName    = "x-filename"
	HeaderContentType = "x-content-type"
	HeaderToken       = "x-token"
)

type ShoppingListServer interface {
	// Export takes the format ("pdf" or "txt") and returns the rendered document body.
	Export(ctx context.Context, format *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
}

var ShoppingListServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ShoppingListServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Export",
			Handler:    exportHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodgram/shopping_list.proto",
}

func RegisterShoppingListServer(s grpc.ServiceRegistrar, srv ShoppingListServer) {
	s.RegisterService(&ShoppingListServiceDesc, srv)
}

func exportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ShoppingListServer).Export(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ExportMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ShoppingListServer).Export(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

type ShoppingListClient struct {
	cc grpc.ClientConnInterface
}

func NewShoppingListClient(cc grpc.ClientConnInterface) *ShoppingListClient {
	return &ShoppingListClient{cc: cc}
}

func (c *ShoppingListClient) Export(ctx context.Context, format string, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, ExportMethod, wrapperspb.String(format), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
