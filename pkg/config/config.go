package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo).
type Config struct {
	App   AppConfig
	Store StoreConfig
	Sale  SaleConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// StoreConfig configuración del almacén documental.
type StoreConfig struct {
	DataDir string // directorio con un archivo JSON por colección
}

// SaleConfig parámetros del motor de ventas.
type SaleConfig struct {
	TaxRate         string // tasa plana de impuesto, ej. "0.18"
	ScanCooldownMS  int    // ventana de cooldown del escáner, en ms
	CommitLatencyMS int    // latencia simulada del commit de checkout, en ms
	ReceiptDir      string // destino de los recibos PDF
}

// TaxRateDecimal parsea la tasa configurada. Rechaza tasas negativas.
func (c SaleConfig) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(c.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("SALE_TAX_RATE inválida %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("SALE_TAX_RATE negativa: %s", c.TaxRate)
	}
	return rate, nil
}

// ScanCooldown devuelve la ventana de cooldown como duración.
func (c SaleConfig) ScanCooldown() time.Duration {
	return time.Duration(c.ScanCooldownMS) * time.Millisecond
}

// CommitLatency devuelve la latencia simulada como duración.
func (c SaleConfig) CommitLatency() time.Duration {
	return time.Duration(c.CommitLatencyMS) * time.Millisecond
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde
// archivo). Las env vars tienen prioridad. Nombres esperados: APP_ENV,
// DATA_DIR, SALE_TAX_RATE, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "shopmaster-pos"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			DataDir: getString(v, "DATA_DIR", "./data"),
		},
		Sale: SaleConfig{
			TaxRate:         getString(v, "SALE_TAX_RATE", "0.18"),
			ScanCooldownMS:  getInt(v, "SALE_SCAN_COOLDOWN_MS", 1500),
			CommitLatencyMS: getInt(v, "SALE_COMMIT_LATENCY_MS", 1500),
			ReceiptDir:      getString(v, "SALE_RECEIPT_DIR", "./receipts"),
		},
	}

	if _, err := cfg.Sale.TaxRateDecimal(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
