package analysis

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/muhammadolammi/musecareer/internal/events"
	"github.com/muhammadolammi/musecareer/internal/extract"
	"github.com/muhammadolammi/musecareer/internal/llm"
	"github.com/muhammadolammi/musecareer/internal/logger"
	"github.com/muhammadolammi/musecareer/internal/payload"
	"github.com/muhammadolammi/musecareer/internal/prompt"
)

const tracerName = "github.com/muhammadolammi/musecareer/internal/analysis"

// EncodedPayload is a file as it arrives inside a JSON request.
type EncodedPayload struct {
	MediaType string
	Data      string
}

type Analyzer struct {
	provider  llm.TextCompletionProvider
	options   llm.Options
	publisher events.Publisher
	log       *logger.Logger
	tracer    trace.Tracer
}

func NewAnalyzer(provider llm.TextCompletionProvider, options llm.Options, publisher events.Publisher, log *logger.Logger) *Analyzer {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{
		provider:  provider,
		options:   options,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer(tracerName),
	}
}

// AnalyzeEncoded decodes the payload and runs the rest of the pipeline. A nil
// payload means no document was uploaded.
func (a *Analyzer) AnalyzeEncoded(ctx context.Context, requestID string, p *EncodedPayload, interests string) (*Result, error) {
	if p == nil {
		return a.Analyze(ctx, requestID, nil, interests)
	}
	_, span := a.tracer.Start(ctx, "analysis.decode")
	data, err := payload.Decode(p.Data)
	endSpan(span, err)
	if err != nil {
		a.ReportFailure(ctx, requestID, err)
		return nil, err
	}
	return a.Analyze(ctx, requestID, &extract.RawDocument{Bytes: data, MediaType: p.MediaType}, interests)
}

// Analyze runs extraction, prompt composition, the model call and response
// parsing in order. Any failure ends the run; there are no partial results.
func (a *Analyzer) Analyze(ctx context.Context, requestID string, doc *extract.RawDocument, interests string) (result *Result, err error) {
	ctx, span := a.tracer.Start(ctx, "analysis.run", trace.WithAttributes(attribute.String("request_id", requestID)))
	defer func() { endSpan(span, err) }()

	log := a.log.With("request_id", requestID)
	a.publish(ctx, events.Update{RequestID: requestID, Status: events.StatusProcessing, Message: "analysis started"})
	defer func() {
		if err != nil {
			a.publish(ctx, events.Update{RequestID: requestID, Status: events.StatusFailed, Message: "analysis failed", Error: err.Error()})
			return
		}
		a.publish(ctx, events.Update{RequestID: requestID, Status: events.StatusCompleted, Message: "analysis completed", Result: result})
	}()

	var cvText string
	if doc != nil {
		cvText, err = a.extract(ctx, *doc)
		if err != nil {
			log.Warn("text extraction failed", "media_type", doc.MediaType, "error", err)
			return nil, err
		}
	}

	composed := prompt.Compose(cvText, interests)

	start := time.Now()
	completion, err := a.complete(ctx, composed)
	if err != nil {
		log.Error("model call failed", "error", err)
		return nil, err
	}
	log.Debug("model call finished", "duration_ms", time.Since(start).Milliseconds(), "completion_len", len(completion))

	result, err = ExtractJSON(completion)
	if err != nil {
		log.Warn("failed to parse model JSON", "error", err)
		return nil, err
	}
	return result, nil
}

func (a *Analyzer) extract(ctx context.Context, doc extract.RawDocument) (string, error) {
	strategy := extract.Classify(doc.MediaType)
	ctx, span := a.tracer.Start(ctx, "analysis.extract", trace.WithAttributes(
		attribute.String("media_type", doc.MediaType),
		attribute.String("strategy", strategy.String()),
		attribute.Int("size_bytes", len(doc.Bytes)),
	))
	text, err := extract.Extract(ctx, doc)
	endSpan(span, err)
	return text, err
}

func (a *Analyzer) complete(ctx context.Context, composed string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "analysis.complete", trace.WithAttributes(
		attribute.Int("prompt_len", len(composed)),
	))
	text, err := a.provider.Complete(ctx, composed, a.options)
	endSpan(span, err)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return text, nil
}

// ReportFailure publishes a failed update for a request that never reached the
// pipeline, such as an undecodable payload or a file that could not be fetched.
func (a *Analyzer) ReportFailure(ctx context.Context, requestID string, cause error) {
	a.publish(ctx, events.Update{RequestID: requestID, Status: events.StatusFailed, Message: "analysis failed", Error: cause.Error()})
}

func (a *Analyzer) publish(ctx context.Context, update events.Update) {
	update.Timestamp = time.Now()
	if err := a.publisher.Publish(ctx, update); err != nil {
		a.log.Warn("failed to publish update", "request_id", update.RequestID, "status", update.Status, "error", err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
