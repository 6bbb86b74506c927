package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cabinet-platform/kernel/internal/adapter/inbound/metricshttp"
	"github.com/cabinet-platform/kernel/internal/config"
	"github.com/cabinet-platform/kernel/internal/domain/audit"
	"github.com/cabinet-platform/kernel/internal/domain/authz"
	"github.com/cabinet-platform/kernel/internal/domain/ipc"
	"github.com/cabinet-platform/kernel/internal/domain/resultgate"
	"github.com/cabinet-platform/kernel/internal/domain/routing"
	"github.com/cabinet-platform/kernel/internal/domain/sandbox"
	"github.com/cabinet-platform/kernel/internal/port/inbound"
	"github.com/cabinet-platform/kernel/internal/port/outbound"
	"github.com/cabinet-platform/kernel/pkg/canonical"
)

// KernelService runs the fixed request pipeline:
//
//	Decode → Validate → AuthZ → Route → Sandbox → Result Gate → Observe → Encode
//
// The policy snapshot is immutable after construction; one KernelService is
// safe for concurrent use.
type KernelService struct {
	source    routing.Node
	policies  *config.PolicySnapshot
	invoker   outbound.ModuleInvoker
	auditor   *AuditService
	statusSvc *StatusService
	evaluator routing.ConditionEvaluator
	encoder   *ipc.Encoder
	metrics   *metricshttp.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// KernelOption customizes optional kernel wiring.
type KernelOption func(*KernelService)

// WithMetrics records pipeline metrics.
func WithMetrics(m *metricshttp.Metrics) KernelOption {
	return func(k *KernelService) { k.metrics = m }
}

// WithTracer emits per-stage spans.
func WithTracer(t trace.Tracer) KernelOption {
	return func(k *KernelService) { k.tracer = t }
}

// WithConditionEvaluator wires the route condition expression evaluator.
func WithConditionEvaluator(e routing.ConditionEvaluator) KernelOption {
	return func(k *KernelService) { k.evaluator = e }
}

// NewKernelService builds the pipeline around an immutable policy snapshot.
func NewKernelService(
	cfg *config.KernelConfig,
	policies *config.PolicySnapshot,
	invoker outbound.ModuleInvoker,
	auditor *AuditService,
	statusSvc *StatusService,
	logger *slog.Logger,
	opts ...KernelOption,
) *KernelService {
	k := &KernelService{
		source: routing.Node{
			Type: routing.NodeType(cfg.Kernel.SourceType),
			ID:   cfg.Kernel.SourceID,
		},
		policies:  policies,
		invoker:   invoker,
		auditor:   auditor,
		statusSvc: statusSvc,
		encoder:   ipc.NewEncoder(),
		tracer:    noop.NewTracerProvider().Tracer("kernel"),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// ProcessRequest runs one request through the pipeline and always returns
// exactly one canonical envelope: a result on success, an error otherwise.
func (k *KernelService) ProcessRequest(ctx context.Context, input []byte) []byte {
	start := time.Now()
	ctx, span := k.tracer.Start(ctx, "kernel.process_request")
	defer span.End()

	out, failed := k.run(ctx, start, input)

	outcome := "result"
	if failed {
		outcome = "error"
	}
	if k.metrics != nil {
		k.metrics.RequestsTotal.WithLabelValues(outcome).Inc()
		k.metrics.RequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
	return out
}

// run executes the pipeline stages. It reports whether the request failed so
// ProcessRequest can label its metrics.
func (k *KernelService) run(ctx context.Context, start time.Time, input []byte) (output []byte, failed bool) {
	// Decode.
	envelope, err := ipc.DecodeMessage(input)
	if err != nil {
		return k.encodeError("", err), true
	}

	// Validate envelope.
	if err := ipc.ValidateEnvelope(envelope); err != nil {
		return k.encodeError("", err), true
	}
	messageID := ipc.StringField(envelope, ipc.FieldMessageID)

	if mt := ipc.MessageType(ipc.StringField(envelope, ipc.FieldMessageType)); mt != ipc.MessageTypeCommand {
		err := ipc.NewError(ipc.CodeInvalidMessageType, "only command messages are supported")
		return k.encodeError(messageID, err), true
	}

	// Validate command payload.
	command := ipc.ObjectField(envelope, ipc.FieldPayload)
	if err := ipc.ValidateCommand(command); err != nil {
		return k.encodeError(messageID, err), true
	}

	actor, err := authz.ExtractContext(command)
	if err != nil {
		return k.encodeError(messageID, err), true
	}
	capability := ipc.StringField(ipc.ObjectField(command, "target"), "capability")

	// AuthZ.
	if err := k.authorize(ctx, actor, capability); err != nil {
		return k.encodeError(messageID, err), true
	}

	// Route.
	moduleID, endpoint, err := k.route(ctx, actor, capability)
	if err != nil {
		return k.encodeError(messageID, err), true
	}

	// Sandbox.
	limits := k.policies.Limits.LimitsFor(moduleID)
	if err := sandbox.CheckInputSize(input, &limits); err != nil {
		return k.encodeError(messageID, err), true
	}

	result, elapsed, err := k.execute(ctx, actor, capability, moduleID, endpoint, command, &limits)
	if err != nil {
		return k.encodeError(messageID, err), true
	}

	// Result gate.
	redacted, err := k.gate(ctx, result)
	if err != nil {
		k.observe(ctx, actor, capability, moduleID, elapsed, err)
		return k.encodeError(messageID, err), true
	}

	// Observe.
	k.observe(ctx, actor, capability, moduleID, elapsed, nil)

	// Encode.
	elapsedMS := time.Since(start).Milliseconds()
	encoded, err := k.encoder.Result(messageID, redacted, elapsedMS)
	if err != nil {
		return k.encodeError(messageID, err), true
	}
	return []byte(encoded), false
}

// authorize runs the capability authorization gate and records the decision.
func (k *KernelService) authorize(ctx context.Context, actor *authz.Context, capability string) error {
	_, span := k.tracer.Start(ctx, "kernel.authorize")
	defer span.End()

	err := authz.Authorize(actor, capability, k.policies.Roles, k.policies.Requirements)
	if err != nil {
		k.auditor.Record(ctx, audit.Authz(actor.ActorID, actor.Role, capability, false, err.Error()))
		return err
	}
	k.auditor.Record(ctx, audit.Authz(actor.ActorID, actor.Role, capability, true, ""))
	return nil
}

// route resolves the target module and runs the edge allowlist gate,
// recording the decision.
func (k *KernelService) route(ctx context.Context, actor *authz.Context, capability string) (moduleID, endpoint string, err error) {
	_, span := k.tracer.Start(ctx, "kernel.route")
	defer span.End()

	moduleID, endpoint, err = k.policies.Resolver.Resolve(capability)
	if err != nil {
		return "", "", err
	}

	to := routing.Node{Type: routing.NodeTypeModule, ID: moduleID}
	err = routing.AuthorizeRoute(k.policies.Graph, k.source, to, capability, actor, "", k.evaluator)

	meta := audit.Routing(actor.ActorID, actor.Role, capability,
		string(k.source.Type), k.source.ID, string(to.Type), to.ID, err == nil, errReason(err))
	k.auditor.Record(ctx, meta)

	if err != nil {
		return "", "", err
	}
	return moduleID, endpoint, nil
}

// execute spawns the module and applies the post-flight sandbox checks. On
// failure the module's status and an execution audit event are recorded here
// before the error propagates.
func (k *KernelService) execute(
	ctx context.Context,
	actor *authz.Context,
	capability, moduleID, endpoint string,
	command map[string]any,
	limits *sandbox.ModuleLimits,
) (map[string]any, time.Duration, error) {
	execCtx, span := k.tracer.Start(ctx, "kernel.execute")
	defer span.End()

	payload, err := canonical.Encode(command)
	if err != nil {
		return nil, 0, ipc.NewError(ipc.CodeInternal, "command is not serializable")
	}

	if k.metrics != nil {
		k.metrics.ModuleInFlight.Inc()
		defer k.metrics.ModuleInFlight.Dec()
	}

	spawnStart := time.Now()
	rawOutput, err := k.invoker.Invoke(execCtx, moduleID, endpoint, []byte(payload), limits)
	elapsed := time.Since(spawnStart)
	if err != nil {
		k.observe(ctx, actor, capability, moduleID, elapsed, err)
		return nil, elapsed, err
	}

	if err := sandbox.CheckOutputSize(rawOutput, limits); err != nil {
		k.observe(ctx, actor, capability, moduleID, elapsed, err)
		return nil, elapsed, err
	}
	if err := sandbox.CheckTimeout(elapsed, limits); err != nil {
		k.observe(ctx, actor, capability, moduleID, elapsed, err)
		return nil, elapsed, err
	}

	result, err := ipc.DecodeMessage(rawOutput)
	if err != nil {
		err := ipc.NewError(ipc.CodeInvalidResult, "module output is not a JSON object")
		k.observe(ctx, actor, capability, moduleID, elapsed, err)
		return nil, elapsed, err
	}
	return result, elapsed, nil
}

// gate applies the result gate: shape first, then redaction, then size caps
// on the redacted result.
func (k *KernelService) gate(ctx context.Context, result map[string]any) (map[string]any, error) {
	_, span := k.tracer.Start(ctx, "kernel.result_gate")
	defer span.End()

	if err := resultgate.ValidateShape(result); err != nil {
		return nil, err
	}
	profile, err := k.policies.Profiles.ProfileForUI(k.source.ID)
	if err != nil {
		return nil, err
	}
	redacted := resultgate.ApplyProfile(result, profile)
	if err := resultgate.CheckSizeLimits(redacted, profile); err != nil {
		return nil, err
	}
	return redacted, nil
}

// observe records the execution outcome: module status first, then the
// execution audit event. Called exactly once per executed request.
func (k *KernelService) observe(ctx context.Context, actor *authz.Context, capability, moduleID string, elapsed time.Duration, execErr error) {
	success := execErr == nil
	errorCode := ""
	errMsg := ""
	if execErr != nil {
		kerr := ipc.AsKernelError(execErr)
		errorCode = string(kerr.Code)
		errMsg = kerr.Error()
	}

	k.statusSvc.RecordInvocation(ctx, moduleID, elapsed, success, errMsg)
	k.auditor.Record(ctx, audit.Execution(actor.ActorID, actor.Role, capability, success, elapsed.Milliseconds(), errorCode))
}

// encodeError terminates the pipeline with a sanitized canonical error
// envelope.
func (k *KernelService) encodeError(correlationID string, err error) []byte {
	kerr := ipc.AsKernelError(err)

	if k.metrics != nil {
		k.metrics.DenialsTotal.WithLabelValues(string(kerr.Code)).Inc()
	}
	if kerr.Code == ipc.CodeInternal {
		k.logger.Error("request failed inside the kernel", "error", err)
	}

	message := audit.RedactReason(kerr.Message)
	encoded, encErr := k.encoder.Error(correlationID, kerr.Code, message, kerr.Severity)
	if encErr != nil {
		// The error envelope builder only fails on unserializable values,
		// which a string message cannot be. Fall back to a fixed envelope.
		k.logger.Error("error envelope encoding failed", "error", encErr)
		encoded, _ = k.encoder.Error("", ipc.CodeInternal, "internal kernel error", ipc.SeverityFatal)
	}
	return []byte(encoded)
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

var _ inbound.Kernel = (*KernelService)(nil)
