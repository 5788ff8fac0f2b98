package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

// LoggerTagProcessor resolves fields tagged fabric:"logger" or
// fabric:"logger:<name>". Named tags receive base.Named(name).
type LoggerTagProcessor struct{}

func NewLoggerTagProcessor() *LoggerTagProcessor {
	return &LoggerTagProcessor{}
}

// GetPriority runs the processor ahead of the default inject processor.
func (ltp *LoggerTagProcessor) GetPriority() int {
	return 50
}

// CanProcess matches "logger" and "logger:<name>", case-insensitive.
func (ltp *LoggerTagProcessor) CanProcess(value string) bool {
	return strings.EqualFold(value, "logger") || strings.HasPrefix(strings.ToLower(value), "logger:")
}

func (ltp *LoggerTagProcessor) Process(ctx context.Context, sc *container.ServiceContainer, field reflect.StructField, value string) (any, error) {
	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService for field '%s': no logger service registered", field.Name)
	}

	base, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved logger is not a LoggerService for field '%s'", field.Name)
	}

	if _, name, found := strings.Cut(value, ":"); found {
		if name = strings.TrimSpace(name); name != "" {
			return base.Named(name), nil
		}
	}
	return base, nil
}

// InjectLoggers fills every exported LoggerService field of the struct that
// target points to whose fabric tag the processor accepts.
func InjectLoggers(ctx context.Context, sc *container.ServiceContainer, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("logger injection target must be a pointer to a struct, got %T", target)
	}

	ltp := NewLoggerTagProcessor()
	elem := v.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		tag, ok := field.Tag.Lookup("fabric")
		if !ok || !ltp.CanProcess(tag) || !field.IsExported() {
			continue
		}

		logger, err := ltp.Process(ctx, sc, field, tag)
		if err != nil {
			return err
		}

		value := reflect.ValueOf(logger)
		if !value.Type().AssignableTo(field.Type) {
			return fmt.Errorf("field '%s' of type %s cannot hold a logger", field.Name, field.Type)
		}
		elem.Field(i).Set(value)
	}

	return nil
}
