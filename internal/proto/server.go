package proto

import (
	"context"
	"net"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/service"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/shopping"
)

type ShoppingListServerImpl struct {
	general  *service.General
	shopping *service.ShoppingList
	logger   *zap.SugaredLogger
}

func NewGRPCServer(lc fx.Lifecycle, cfg *config.Config, general *service.General, list *service.ShoppingList, logger *zap.SugaredLogger) *ShoppingListServerImpl {
	instance := newServer(general, list, logger)
	grpcServer := instance.grpcServer()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			listen := cfg.Host + ":" + cfg.GRPCPort
			lis, err := net.Listen("tcp", listen)
			if err != nil {
				return errors.Wrap(err, "failed to listen")
			}
			logger.Infow("starting GRPC server", "listen", listen)

			go func() {
				if err := grpcServer.Serve(lis); err != nil {
					logger.Errorw("failed to serve", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping GRPC server.")
			grpcServer.GracefulStop()
			return nil
		},
	})

	return instance
}

func newServer(general *service.General, list *service.ShoppingList, logger *zap.SugaredLogger) *ShoppingListServerImpl {
	return &ShoppingListServerImpl{
		general:  general,
		shopping: list,
		logger:   logger,
	}
}

func (s *ShoppingListServerImpl) grpcServer() *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(s.logCalls))
	RegisterShoppingListServer(srv, s)
	return srv
}

func (s *ShoppingListServerImpl) Export(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	user, err := s.general.UserByToken(ctx, tokenFromMetadata(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	format, err := shopping.ParseFormat(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "unknown export format %q", req.GetValue())
	}

	doc, err := s.shopping.Export(ctx, user, format)
	if err != nil {
		return nil, toStatus(err)
	}

	header := metadata.Pairs(HeaderFileName, doc.FileName, HeaderContentType, doc.ContentType)
	if err := grpc.SetHeader(ctx, header); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return wrapperspb.Bytes(doc.Body), nil
}

func (s *ShoppingListServerImpl) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Infow("grpc call", "method", info.FullMethod, "code", status.Code(err), "latency", time.Since(start))
	return resp, err
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(HeaderToken)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func toStatus(err error) error {
	verr := &service.ValidationError{}
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Error())
	case errors.Is(err, service.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	}
	return status.Error(codes.Internal, "internal error")
}
