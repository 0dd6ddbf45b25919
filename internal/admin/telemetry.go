package admin

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/bancharampur/infogate/internal/admin"

const (
	attrAction    = attribute.Key("admin.command.action")
	attrTarget    = attribute.Key("admin.command.target")
	attrOutcome   = attribute.Key("admin.command.outcome")
	attrPrincipal = attribute.Key("admin.principal.id")
	attrCommandID = attribute.Key("admin.command.id")
)

var tracer = otel.Tracer(instrumentationName)

func commandAttributes(cmd Command) []attribute.KeyValue {
	return []attribute.KeyValue{
		attrAction.String(string(cmd.Action)),
		attrTarget.String(string(cmd.Target)),
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
