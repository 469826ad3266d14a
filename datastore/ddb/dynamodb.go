/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/commissaire/datastore"
	cerrors "github.com/suparena/commissaire/errors"
	"github.com/suparena/commissaire/models"
)

// Default key templates. PK groups records by model type, SK identifies the record.
const (
	DefaultPKTemplate = "{type}"
	DefaultSKTemplate = "{key}"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// Config is the decoded configuration of a DynamoDB store handler.
type Config struct {
	Name         string        `mapstructure:"name"`
	Table        string        `mapstructure:"table"`
	Region       string        `mapstructure:"region"`
	AccessKey    string        `mapstructure:"access_key"`
	SecretKey    string        `mapstructure:"secret_key"`
	Endpoint     string        `mapstructure:"endpoint"`
	PKTemplate   string        `mapstructure:"pk_template"`
	SKTemplate   string        `mapstructure:"sk_template"`
	PageSize     int32         `mapstructure:"page_size"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

// ParseConfig decodes cfg, fills unset connection settings from the
// environment and applies defaults.
func ParseConfig(cfg datastore.Config) (Config, error) {
	var c Config
	if err := datastore.DecodeConfig(cfg, &c); err != nil {
		return c, err
	}

	c.Table = withEnv(c.Table, "AWS_DDB_TABLE")
	c.Region = withEnv(c.Region, "AWS_REGION")
	c.AccessKey = withEnv(c.AccessKey, "AWS_ACCESS_KEY")
	c.SecretKey = withEnv(c.SecretKey, "AWS_SECRET_KEY")

	if c.PKTemplate == "" {
		c.PKTemplate = DefaultPKTemplate
	}
	if c.SKTemplate == "" {
		c.SKTemplate = DefaultSKTemplate
	}
	if c.PageSize <= 0 {
		c.PageSize = 100
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Table == "" {
		return cerrors.NewConfigurationError(c.Name, `"table" is required (or set AWS_DDB_TABLE)`)
	}
	if (c.AccessKey == "") != (c.SecretKey == "") {
		return cerrors.NewConfigurationError(c.Name, `"access_key" and "secret_key" must be given together`)
	}
	if err := checkTemplate(c.PKTemplate, macroType); err != nil {
		return cerrors.NewConfigurationError(c.Name, fmt.Sprintf("pk_template: %v", err))
	}
	if err := checkTemplate(c.SKTemplate, macroType, macroKey); err != nil {
		return cerrors.NewConfigurationError(c.Name, fmt.Sprintf("sk_template: %v", err))
	}
	if !strings.Contains(c.SKTemplate, "{"+macroKey+"}") {
		return cerrors.NewConfigurationError(c.Name, "sk_template must contain {key}")
	}
	return nil
}

func withEnv(value, envVar string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envVar)
}

// HandlerType creates DynamoDB store handlers.
type HandlerType struct {
	Logger *zap.Logger
}

func (HandlerType) Name() string { return "dynamodb" }

func (HandlerType) CheckConfig(cfg datastore.Config) error {
	c, err := ParseConfig(cfg)
	if err != nil {
		return err
	}
	return c.validate()
}

func (ht HandlerType) New(cfg datastore.Config) (datastore.StoreHandler, error) {
	c, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	client, err := NewClient(context.Background(), c)
	if err != nil {
		return nil, err
	}
	logger := ht.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("DynamoDB client initialized",
		zap.String("handler", c.Name),
		zap.String("table", c.Table),
		zap.String("region", c.Region))
	return NewStore(client, c, logger), nil
}

// NewClient initializes a DynamoDB client. Static credentials are used when
// configured, otherwise the default AWS credential chain.
func NewClient(ctx context.Context, c Config) (*sdk.Client, error) {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	}), nil
}

// item is the stored form of a record.
type item struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	Data       string `dynamodbav:"Data"`
	UpdatedAt  string `dynamodbav:"UpdatedAt,omitempty"`
}

// Store is a store handler keeping each record as one DynamoDB item.
type Store struct {
	client API
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// NewStore returns a Store using client. cfg is expected to have passed ParseConfig.
func NewStore(client API, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{client: client, cfg: cfg, logger: logger, now: time.Now}
}

func (s *Store) key(m models.Model) (map[string]types.AttributeValue, error) {
	if m.PrimaryKey() == "" {
		return nil, cerrors.NewModelValidationError(m.TypeName(), "", "record has no primary key")
	}
	pk, sk := s.expandKeys(m.TypeName(), m.PrimaryKey())
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

func (s *Store) expandKeys(typeName, key string) (pk, sk string) {
	values := map[string]string{macroType: typeName, macroKey: key}
	return expandMacros(s.cfg.PKTemplate, values), expandMacros(s.cfg.SKTemplate, values)
}

// Save puts the record, replacing any stored version.
func (s *Store) Save(ctx context.Context, m models.Model) (models.Model, error) {
	if m.PrimaryKey() == "" {
		return nil, cerrors.NewModelValidationError(m.TypeName(), "", "record has no primary key")
	}
	data, err := models.Encode(m)
	if err != nil {
		return nil, err
	}

	pk, sk := s.expandKeys(m.TypeName(), m.PrimaryKey())
	av, err := attributevalue.MarshalMap(item{
		PK:         pk,
		SK:         sk,
		EntityType: m.TypeName(),
		Data:       string(data),
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", models.Identity(m), err)
	}

	if _, err := s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(s.cfg.Table),
		Item:      av,
	}); err != nil {
		return nil, fmt.Errorf("PutItem failed for %s: %w", models.Identity(m), err)
	}
	return models.Decode(m, data)
}

// Get reads the record with a consistent read.
func (s *Store) Get(ctx context.Context, m models.Model) (models.Model, error) {
	key, err := s.key(m)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(s.cfg.Table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem failed for %s: %w", models.Identity(m), err)
	}
	if out.Item == nil {
		return nil, cerrors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
	}
	return s.decode(m, out.Item)
}

// Delete removes the record. The delete is conditional on the item existing.
func (s *Store) Delete(ctx context.Context, m models.Model) error {
	key, err := s.key(m)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:           aws.String(s.cfg.Table),
		Key:                 key,
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return cerrors.NewNotFoundError(m.TypeName(), m.PrimaryKey())
		}
		return fmt.Errorf("DeleteItem failed for %s: %w", models.Identity(m), err)
	}
	return nil
}

// List queries the partition of the element type, following pagination.
func (s *Store) List(ctx context.Context, l models.ListModel) (models.ListModel, error) {
	like := l.NewItem()
	pk, _ := s.expandKeys(like.TypeName(), "")

	input := &sdk.QueryInput{
		TableName:              aws.String(s.cfg.Table),
		KeyConditionExpression: aws.String("PK = :pk"),
		FilterExpression:       aws.String("EntityType = :type"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: pk},
			":type": &types.AttributeValueMemberS{Value: like.TypeName()},
		},
		Limit:          aws.Int32(s.cfg.PageSize),
		ConsistentRead: aws.Bool(true),
	}

	var records []models.Model
	pages := 0
	for {
		out, err := s.queryWithRetry(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query failed for %s: %w", l.TypeName(), err)
		}
		pages++
		for _, av := range out.Items {
			m, err := s.decode(like, av)
			if err != nil {
				return nil, err
			}
			records = append(records, m)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	s.logger.Debug("listed records",
		zap.String("model", l.TypeName()),
		zap.Int("count", len(records)),
		zap.Int("pages", pages))

	if err := l.SetItems(records); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Store) decode(like models.Model, av map[string]types.AttributeValue) (models.Model, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	if it.EntityType != like.TypeName() {
		return nil, fmt.Errorf("item %s/%s holds %q, expected %q", it.PK, it.SK, it.EntityType, like.TypeName())
	}
	return models.Decode(like, []byte(it.Data))
}
