package dependencies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"t2v/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrNoPipelineID = errors.New("backend returned no pipeline_id")

// Rpc talks to the inference backend. It satisfies pipeline.Backend.
type Rpc struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

func NewRpc(cfg config.RpcConfig, opts ...grpc.DialOption) (*Rpc, error) {

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout())
	defer cancel()

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(cfg.MaxMessageBytes())),
		grpc.WithBlock(),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.DialContext(ctx, fmt.Sprint(cfg.Peer, ":", cfg.Port), dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("error creating newrpc: %w", err)
	}

	return &Rpc{
		conn:    conn,
		timeout: cfg.CallTimeout(),
	}, nil
}

func (r *Rpc) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Rpc) Load(ctx context.Context, task, model string) (string, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"task":  task,
		"model": model,
	})
	if err != nil {
		return "", err
	}

	resp := new(structpb.Struct)
	if err := r.conn.Invoke(ctx, loadMethod, req, resp); err != nil {
		return "", err
	}

	id := resp.GetFields()["pipeline_id"].GetStringValue()
	if id == "" {
		return "", ErrNoPipelineID
	}
	return id, nil
}

func (r *Rpc) Run(ctx context.Context, pipelineID string, inputs map[string]any) (map[string]any, error) {
	ctx, cancel := r.callCtx(ctx)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"pipeline_id": pipelineID,
		"inputs":      inputs,
	})
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}

	resp := new(structpb.Struct)
	if err := r.conn.Invoke(ctx, runMethod, req, resp); err != nil {
		return nil, err
	}

	return resp.AsMap(), nil
}

// Health reports whether the backend's pipeline service is SERVING.
func (r *Rpc) Health(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := healthpb.NewHealthClient(r.conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: PipelineServiceName})
	if err != nil {
		return false, err
	}

	return resp.GetStatus() == healthpb.HealthCheckResponse_SERVING, nil
}

func (r *Rpc) Close() {
	r.conn.Close()
}
