package command

import (
	"fmt"
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"github.com/uber/jaeger-client-go/config"
)

const TracerServiceName = "cqlish"

type jaegerLogrus struct {
	*logrus.Entry
}

func (l *jaegerLogrus) Error(s string) {
	l.Entry.Error(s)
}

func setLogLevel(level string) error {
	// info is the default log level
	if level == "" || level == "info" {
		return nil
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("cannot parse log level: %s", err.Error())
	}

	logrus.SetLevel(lvl)
	return nil
}

// initTracer installs a jaeger tracer configured from the JAEGER_*
// environment variables as the global opentracing tracer.
func initTracer() (io.Closer, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		logrus.WithField("error", err).Error("unable to read jaeger environment")
		return nil, err
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = TracerServiceName
	}

	logger := &jaegerLogrus{logrus.WithField("subsystem", "jaeger")}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName, config.Logger(logger))
	if err != nil {
		logrus.WithField("error", err).Error("unable to initialize global tracer")
		return nil, err
	}

	logrus.WithField("tracer", fmt.Sprintf("%T", opentracing.GlobalTracer())).Info("tracing enabled")
	return closer, nil
}
