// Package config loads per-binary settings from the environment.
// Missing or malformed settings are reported as ErrInvalidConfig and
// are meant to abort start-up, never a single request.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StoreDynamoDB = "dynamodb"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	PublisherSNS   = "sns"
	PublisherKafka = "kafka"

	EmailSES  = "ses"
	EmailSMTP = "smtp"
)

type Logging struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type Postgres struct {
	URL string `env:"DATABASE_URL"`
}

type Kafka struct {
	Brokers           []string      `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	GroupID           string        `env:"KAFKA_GROUP_ID"`
	DLQTopic          string        `env:"KAFKA_DLQ_TOPIC"`
	MaxDeliveries     int           `env:"KAFKA_MAX_DELIVERIES" envDefault:"5"`
	RedeliveryBackoff time.Duration `env:"KAFKA_REDELIVERY_BACKOFF" envDefault:"1s"`
}

type SMTP struct {
	Host string `env:"SMTP_HOST" envDefault:"localhost"`
	Port string `env:"SMTP_PORT" envDefault:"1025"`
}

// API configures the order submission service.
type API struct {
	Logging
	HTTPAddr         string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	OrderTableName   string        `env:"ORDER_TABLE_NAME,required,notEmpty"`
	OrderTopic       string        `env:"ORDER_TOPIC,required,notEmpty"`
	StoreBackend     string        `env:"STORE_BACKEND" envDefault:"dynamodb"`
	PublisherBackend string        `env:"PUBLISHER_BACKEND" envDefault:"sns"`
	Postgres         Postgres
	Kafka            Kafka
}

// Notifier configures the confirmation email consumer.
type Notifier struct {
	Logging
	EmailFrom    string `env:"EMAIL_FROM,required,notEmpty"`
	EmailBackend string `env:"EMAIL_BACKEND" envDefault:"ses"`
	OrderTopic   string `env:"ORDER_TOPIC"`
	SMTP         SMTP
	Kafka        Kafka
}

// Auditor configures the audit record consumer.
type Auditor struct {
	Logging
	AuditTableName string `env:"AUDIT_TABLE_NAME,required,notEmpty"`
	StoreBackend   string `env:"STORE_BACKEND" envDefault:"dynamodb"`
	OrderTopic     string `env:"ORDER_TOPIC"`
	Postgres       Postgres
	Kafka          Kafka
}

func LoadAPI() (API, error)           { return loadAPI(env.Options{}) }
func LoadNotifier() (Notifier, error) { return loadNotifier(env.Options{}) }
func LoadAuditor() (Auditor, error)   { return loadAuditor(env.Options{}) }

func loadAPI(opts env.Options) (API, error) {
	var cfg API
	if err := parse(&cfg, opts); err != nil {
		return API{}, err
	}
	return cfg, wrap(cfg.Validate())
}

func loadNotifier(opts env.Options) (Notifier, error) {
	var cfg Notifier
	if err := parse(&cfg, opts); err != nil {
		return Notifier{}, err
	}
	return cfg, wrap(cfg.Validate())
}

func loadAuditor(opts env.Options) (Auditor, error) {
	var cfg Auditor
	if err := parse(&cfg, opts); err != nil {
		return Auditor{}, err
	}
	return cfg, wrap(cfg.Validate())
}

func parse(cfg any, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

func (c API) Validate() error {
	if err := validateStore(c.StoreBackend, c.Postgres); err != nil {
		return err
	}
	switch c.PublisherBackend {
	case PublisherSNS:
	case PublisherKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka publisher")
		}
	default:
		return fmt.Errorf("unknown PUBLISHER_BACKEND %q", c.PublisherBackend)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c Notifier) Validate() error {
	switch c.EmailBackend {
	case EmailSES:
	case EmailSMTP:
		if c.SMTP.Host == "" || c.SMTP.Port == "" {
			return errors.New("SMTP_HOST and SMTP_PORT are required for the smtp backend")
		}
	default:
		return fmt.Errorf("unknown EMAIL_BACKEND %q", c.EmailBackend)
	}
	return nil
}

func (c Auditor) Validate() error {
	return validateStore(c.StoreBackend, c.Postgres)
}

// ValidateConsumer checks the settings a long-running Kafka consumer needs
// on top of the Lambda ones.
func (k Kafka) ValidateConsumer(topic string) error {
	var errs []error
	if topic == "" {
		errs = append(errs, errors.New("ORDER_TOPIC is required"))
	}
	if len(k.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if k.GroupID == "" {
		errs = append(errs, errors.New("KAFKA_GROUP_ID is required"))
	}
	if k.MaxDeliveries < 1 {
		errs = append(errs, errors.New("KAFKA_MAX_DELIVERIES must be at least 1"))
	}
	return wrap(errors.Join(errs...))
}

func validateStore(backend string, pg Postgres) error {
	switch backend {
	case StoreDynamoDB, StoreMemory:
		return nil
	case StorePostgres:
		if pg.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
		return nil
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}
