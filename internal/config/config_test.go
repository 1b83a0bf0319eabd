package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	// shield the assertions from whatever the host environment carries
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "TAX_RATE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromFloat(0.20)))
}

func TestKafkaBrokersCSV(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092 ,,c:9092")
	cfg := Load()
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, cfg.KafkaBrokers)
}

func TestTaxRateFallback(t *testing.T) {
	t.Setenv("TAX_RATE", "banana")
	cfg := Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromFloat(0.20)))

	t.Setenv("TAX_RATE", "-0.1")
	cfg = Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromFloat(0.20)))

	t.Setenv("TAX_RATE", "0.10")
	cfg = Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.NewFromFloat(0.10)))
}
