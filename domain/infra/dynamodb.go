package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pyama86/device-query/domain/model"
)

//go:generate mockgen -source=dynamodb.go -destination=mock_dynamodb.go -package=infra DynamoDBAPI

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// counterID は採番用のアイテム。問い合わせの ID は 1 から始まる
const counterID = "0"

type DynamoDB struct {
	db        DynamoDBAPI
	tableName string
	// DYNAMO_LOCAL のときだけテーブルを作る
	createTable bool
}

const defaultTableNamePrefix = "device_query"

var (
	waitInterval = 2 * time.Second // ポーリング間隔
	maxRetries   = 30              // 最大リトライ回数 (30回 = 約1分)
)

func NewDynamoDB() (*DynamoDB, error) {
	prefix := defaultTableNamePrefix
	if os.Getenv("DYNAMO_TABLE_NAME_PREFIX") != "" {
		prefix = os.Getenv("DYNAMO_TABLE_NAME_PREFIX")
	}
	var db *dynamodb.Client
	if os.Getenv("DYNAMO_LOCAL") != "" {
		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("dummy"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}

		db = dynamodb.NewFromConfig(cfg,
			func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String("http://localhost:8000")
			},
		)
	} else {
		cfg, err := config.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}

		db = dynamodb.NewFromConfig(cfg)
	}
	return newDynamoDBWithClient(db, prefix, os.Getenv("DYNAMO_LOCAL") != ""), nil
}

func newDynamoDBWithClient(db DynamoDBAPI, prefix string, createTable bool) *DynamoDB {
	return &DynamoDB{
		db:          db,
		tableName:   prefix + "_queries",
		createTable: createTable,
	}
}

// EnsureSchema creates the table on DynamoDB Local. Against AWS the table is
// provisioned outside the app and only checked for existence.
func (d *DynamoDB) EnsureSchema(ctx context.Context) error {
	_, err := d.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) || !d.createTable {
		return fmt.Errorf("failed to describe %s table: %w", d.tableName, err)
	}

	_, err = d.db.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeN,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeHash, // Partition Key
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	})
	if err != nil {
		// 別プロセスが作成中なら、それが ACTIVE になるのを待つ
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create %s table: %w", d.tableName, err)
		}
	}
	return d.waitActive(ctx)
}

// テーブルがACTIVEになるまで待機
func (d *DynamoDB) waitActive(ctx context.Context) error {
	for i := 0; i < maxRetries; i++ {
		out, err := d.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(d.tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe %s table: %w", d.tableName, err)
		}
		if out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitInterval):
		}
	}
	return fmt.Errorf("table %s creation timed out", d.tableName)
}

// nextID はカウンタアイテムを原子的に加算して次の ID を返す
func (d *DynamoDB) nextID(ctx context.Context) (uint, error) {
	out, err := d.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: counterID},
		},
		UpdateExpression: aws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("UpdateItem failed: %w", err)
	}
	seq, err := getNumberValue(out.Attributes, "seq")
	if err != nil {
		return 0, err
	}
	if seq <= 0 {
		return 0, fmt.Errorf("invalid sequence value: %d", seq)
	}
	return uint(seq), nil
}

func (d *DynamoDB) InsertQuery(ctx context.Context, query *model.Query) error {
	id, err := d.nextID(ctx)
	if err != nil {
		return err
	}
	createdAt := model.FormatTime(timeNow())

	_, err = d.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(id), 10)},
			"name":       &types.AttributeValueMemberS{Value: query.Name},
			"email":      &types.AttributeValueMemberS{Value: query.Email},
			"device":     &types.AttributeValueMemberS{Value: query.Device},
			"message":    &types.AttributeValueMemberS{Value: query.Message},
			"created_at": &types.AttributeValueMemberS{Value: createdAt},
		},
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	query.ID = id
	query.CreatedAt = createdAt
	return nil
}

func (d *DynamoDB) scanAll(ctx context.Context) ([]model.Query, error) {
	queries := []model.Query{}
	var startKey map[string]types.AttributeValue
	for {
		out, err := d.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(d.tableName),
			FilterExpression: aws.String("id <> :counter"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":counter": &types.AttributeValueMemberN{Value: counterID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("Scan failed: %w", err)
		}
		for _, item := range out.Items {
			id, err := getNumberValue(item, "id")
			if err != nil {
				return nil, err
			}
			queries = append(queries, model.Query{
				ID:        uint(id),
				Name:      getStringValue(item, "name"),
				Email:     getStringValue(item, "email"),
				Device:    getStringValue(item, "device"),
				Message:   getStringValue(item, "message"),
				CreatedAt: getStringValue(item, "created_at"),
			})
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return queries, nil
}

// ListQueries scans the whole table. DynamoDB has no global order, so sorting
// happens here.
func (d *DynamoDB) ListQueries(ctx context.Context, limit int) ([]model.Query, error) {
	queries, err := d.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(queries, func(i, j int) bool {
		if queries[i].CreatedAt != queries[j].CreatedAt {
			return queries[i].CreatedAt > queries[j].CreatedAt
		}
		return queries[i].ID > queries[j].ID
	})
	if limit = ClampLimit(limit); len(queries) > limit {
		queries = queries[:limit]
	}
	return queries, nil
}

func (d *DynamoDB) CountQueries(ctx context.Context) (int, error) {
	queries, err := d.scanAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(queries), nil
}

func (d *DynamoDB) Close() error {
	return nil
}

func getStringValue(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func getNumberValue(item map[string]types.AttributeValue, key string) (int, error) {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		return strconv.Atoi(v.Value)
	}
	return 0, fmt.Errorf("failed to parse %s", key)
}
