package quote

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "roomrate.v1.QuoteService"

const (
	getPriceMethod         = "/" + ServiceName + "/GetPrice"
	getPriceDiscountMethod = "/" + ServiceName + "/GetPriceDiscount"
	convertMethod          = "/" + ServiceName + "/Convert"
)

// QuoteServer is the server API for QuoteService. Payloads are google.protobuf.Struct
// documents; see mappers.go for their fields.
type QuoteServer interface {
	GetPrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPriceDiscount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterQuoteServer registers srv on s.
func RegisterQuoteServer(s grpc.ServiceRegistrar, srv QuoteServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler(method string, call func(QuoteServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QuoteServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(QuoteServer), ctx, req.(*structpb.Struct))
		})
	}
}

// ServiceDesc describes QuoteService for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QuoteServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPrice", Handler: unaryHandler(getPriceMethod, QuoteServer.GetPrice)},
		{MethodName: "GetPriceDiscount", Handler: unaryHandler(getPriceDiscountMethod, QuoteServer.GetPriceDiscount)},
		{MethodName: "Convert", Handler: unaryHandler(convertMethod, QuoteServer.Convert)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "roomrate/v1/quote.proto",
}

// Client calls QuoteService.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a new QuoteService client.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// GetPrice calls QuoteService.GetPrice.
func (c *Client) GetPrice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getPriceMethod, in, opts...)
}

// GetPriceDiscount calls QuoteService.GetPriceDiscount.
func (c *Client) GetPriceDiscount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getPriceDiscountMethod, in, opts...)
}

// Convert calls QuoteService.Convert.
func (c *Client) Convert(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, convertMethod, in, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
