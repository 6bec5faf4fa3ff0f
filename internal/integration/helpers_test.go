//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"
	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/power-curve-service/internal/domain"
	"github.com/couchcryptid/power-curve-service/internal/observability"
	"github.com/couchcryptid/power-curve-service/internal/pipeline"
	"github.com/couchcryptid/power-curve-service/internal/render"
)

const exportCSV = "Turbine,Model,Site,Customer,Week,Wind speed - AVE [m/s],Active power - AVE [kW],Power curve validity - MIN\n" +
	"T1,RD93,A,C1,5,6,400,0\n" +
	"T1,RD93,A,C1,5,7,700,1\n" +
	"T1,RD93,A,C1,5,8,1000,1\n" +
	"T2,UNKNOWN,,,,6,300,3\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(sinks pipeline.Sinks) *pipeline.Pipeline {
	catalog := domain.DefaultCatalog()
	renderer := render.NewRenderer(catalog, render.Options{DPI: 72, Width: 6 * vg.Inch, Height: 4 * vg.Inch}, discardLogger())
	return pipeline.New(catalog, renderer, sinks, discardLogger(), observability.NewMetricsForTesting())
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("power-curve-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
	// Metadata propagation is asynchronous.
	time.Sleep(time.Second)
}

// minioEndpoint describes a running MinIO container.
type minioEndpoint struct {
	Endpoint  string
	AccessKey string
	SecretKey string
}

func startMinio(ctx context.Context, t *testing.T) minioEndpoint {
	t.Helper()
	container, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z",
		tcminio.WithUsername("powercurve"),
		tcminio.WithPassword("powercurve-secret"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start minio container")

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return minioEndpoint{Endpoint: endpoint, AccessKey: container.Username, SecretKey: container.Password}
}
