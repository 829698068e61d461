package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/chconnect/clickhouse-client-go/clickhouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	log "github.com/sirupsen/logrus"
)

// getEnv retrieves the value of the environment variable named by the key.
// It returns the value, which will be the default value if the variable is not present.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

var (
	httpAddr = os.Getenv("CLICKHOUSE_HTTP_ADDR")
	username = getEnv("CLICKHOUSE_USER", "default")
	password = getEnv("CLICKHOUSE_PASSWORD", "")
	cluster  = os.Getenv("CLICKHOUSE_CLUSTER")
)

func requireServer(t *testing.T) {
	t.Helper()
	if httpAddr == "" {
		t.Skip("CLICKHOUSE_HTTP_ADDR is not set")
	}
}

func getCustomHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}

func newConfig() *clickhouse.ClientConfig {
	return &clickhouse.ClientConfig{
		EndpointList:   []string{httpAddr},
		Username:       username,
		Password:       password,
		Cluster:        cluster,
		DisableCluster: cluster == "",
		HTTPTimeout:    10 * time.Second,
	}
}

func getClickHouseClients(t *testing.T) []*clickhouse.Connection {
	fromConfig, err := clickhouse.NewWithConfig(newConfig())
	require.NoError(t, err)
	withClient, err := clickhouse.NewWithConfigAndClient(newConfig(), getCustomHTTPClient())
	require.NoError(t, err)
	return []*clickhouse.Connection{fromConfig, withClient}
}

func createScratchTable(t *testing.T, client *clickhouse.Connection) string {
	t.Helper()
	table := fmt.Sprintf("default.client_it_%d", time.Now().UnixNano())
	require.NoError(t, client.Exec("CREATE TABLE "+table+
		" (id Int64, name String, score Float64) ENGINE = MergeTree ORDER BY id"))
	t.Cleanup(func() {
		if err := client.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			log.Error(err)
		}
	})
	return table
}

func sampleTable(t *testing.T) *clickhouse.Table {
	data := clickhouse.NewTable("id", "name", "score")
	for i := int64(1); i <= 50; i++ {
		require.NoError(t, data.AppendRow(i, fmt.Sprintf("row-%d", i), float64(i)/4))
	}
	return data
}

// TestPingAndShow requires a ClickHouse server reachable at CLICKHOUSE_HTTP_ADDR.
func TestPingAndShow(t *testing.T) {
	requireServer(t)
	for _, client := range getClickHouseClients(t) {
		_, err := client.Ping()
		assert.Nil(t, err)
		databases, err := client.ShowDatabases()
		assert.Nil(t, err)
		assert.Contains(t, databases, "system")
		tables, err := client.ShowTables("system")
		assert.Nil(t, err)
		assert.Contains(t, tables, "tables")
	}
}

func TestInsertSelectRoundTrip(t *testing.T) {
	requireServer(t)
	client := getClickHouseClients(t)[0]
	table := createScratchTable(t, client)
	data := sampleTable(t)

	require.NoError(t, client.Insert(table, data))
	got, err := client.Select("SELECT * FROM " + table + " ORDER BY id")
	require.NoError(t, err)
	assert.True(t, data.Equal(got))

	require.NoError(t, client.ClearTable(table))
	require.NoError(t, client.InsertCompressed(table, data))
	compressed, err := client.Select("SELECT * FROM "+table+" ORDER BY id",
		clickhouse.WithFormat(clickhouse.FormatTabSeparatedWithNamesAndTypes))
	require.NoError(t, err)
	assert.True(t, data.Equal(compressed))
}

func TestCompressedFormats(t *testing.T) {
	requireServer(t)
	client := getClickHouseClients(t)[1]
	table := createScratchTable(t, client)
	data := sampleTable(t)

	formats := []clickhouse.Format{
		clickhouse.FormatCSV,
		clickhouse.FormatTabSeparated,
		clickhouse.FormatJSONEachRow,
		clickhouse.FormatArrowStream,
	}
	codecs := []clickhouse.Compression{
		clickhouse.CompressionGzip,
		clickhouse.CompressionDeflate,
		clickhouse.CompressionZstd,
		clickhouse.CompressionLZ4,
	}
	for _, format := range formats {
		for _, codec := range codecs {
			require.NoError(t, client.ClearTable(table))
			err := client.InsertCompressed(table, data, clickhouse.WithFormat(format), clickhouse.WithCompression(codec))
			require.NoError(t, err, "%s/%s", format, codec)
			result, err := client.QueryCompressed("SELECT * FROM "+table+" ORDER BY id", clickhouse.WithCompression(codec))
			require.NoError(t, err)
			assert.True(t, data.Equal(result.Table), "%s/%s", format, codec)
		}
	}
}

func TestRequestErrorFromServer(t *testing.T) {
	requireServer(t)
	client := getClickHouseClients(t)[0]
	_, err := client.Query("SELEC 1")
	var requestErr *clickhouse.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Contains(t, requestErr.Body, "Syntax error")
}

func TestPreparedStatementIntegration(t *testing.T) {
	requireServer(t)
	client := getClickHouseClients(t)[0]
	table := createScratchTable(t, client)
	require.NoError(t, client.Insert(table, sampleTable(t)))

	stmt, err := client.Prepare("SELECT id, name FROM " + table + " WHERE id > ? AND name != ? ORDER BY id LIMIT ?")
	require.NoError(t, err)
	defer stmt.Close()
	result, err := stmt.ExecuteWithParams(10, "row-12", 3)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(11), int64(13), int64(14)}, result.Table.Columns[0].Values)
}
