package infra

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/dialogkeep/dialog-control/config"
	"github.com/dialogkeep/dialog-control/domain/model"
)

// DynamoDB is the alternate Datastore implementation, selected with
// DB_DRIVER=dynamodb. Surrogate ids come from an atomic counter item
// because DynamoDB has no autoincrement.
type DynamoDB struct {
	db                *dynamodb.Client
	userTableName     string
	turnTableName     string
	counterTableName  string
	toggleMaxAttempts int
}

const externalIDIndexName = "ExternalIdIndex"
const userIDIndexName = "UserIdIndex"

func NewDynamoDB(cfg *config.Config) (*DynamoDB, error) {
	var db *dynamodb.Client
	if cfg.DynamoLocal {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion("dummy"),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "dummy")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(awsCfg,
			func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String("http://localhost:8000")
			},
		)
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %v", err)
		}

		db = dynamodb.NewFromConfig(awsCfg)
	}

	d := &DynamoDB{
		db:                db,
		userTableName:     cfg.DynamoTablePrefix + "_users",
		turnTableName:     cfg.DynamoTablePrefix + "_turns",
		counterTableName:  cfg.DynamoTablePrefix + "_counters",
		toggleMaxAttempts: 3,
	}
	if cfg.DynamoLocal {
		if err := d.EnsureTables(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

const (
	waitInterval = 2 * time.Second
	maxRetries   = 30
)

func (d *DynamoDB) EnsureTables() error {
	tableNames := []string{
		d.userTableName,
		d.turnTableName,
		d.counterTableName,
	}

	for _, tableName := range tableNames {
		if err := d.ensureSingleTable(tableName); err != nil {
			return fmt.Errorf("failed to ensure table %s: %v", tableName, err)
		}
	}

	return nil
}

func (d *DynamoDB) ensureSingleTable(tableName string) error {
	_, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
	if err == nil {
		return nil
	}

	if err := d.createTable(tableName); err != nil {
		return err
	}

	for i := 0; i < maxRetries; i++ {
		out, err := d.db.DescribeTable(context.TODO(), &dynamodb.DescribeTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			return fmt.Errorf("failed to describe table %s: %v", tableName, err)
		}

		if out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		time.Sleep(waitInterval)
	}

	return fmt.Errorf("table %s creation timed out", tableName)
}

func (d *DynamoDB) createTable(tableName string) error {
	var createTableInput *dynamodb.CreateTableInput

	switch tableName {
	case d.userTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
				{AttributeName: aws.String("external_id"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(externalIDIndexName),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("external_id"), KeyType: types.KeyTypeHash},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
					ProvisionedThroughput: &types.ProvisionedThroughput{
						ReadCapacityUnits:  aws.Int64(5),
						WriteCapacityUnits: aws.Int64(5),
					},
				},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	case d.turnTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
				{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
				{
					IndexName: aws.String(userIDIndexName),
					KeySchema: []types.KeySchemaElement{
						{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
						{AttributeName: aws.String("id"), KeyType: types.KeyTypeRange},
					},
					Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
					ProvisionedThroughput: &types.ProvisionedThroughput{
						ReadCapacityUnits:  aws.Int64(5),
						WriteCapacityUnits: aws.Int64(5),
					},
				},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	case d.counterTableName:
		createTableInput = &dynamodb.CreateTableInput{
			TableName: aws.String(tableName),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("name"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("name"), KeyType: types.KeyTypeHash},
			},
			ProvisionedThroughput: &types.ProvisionedThroughput{
				ReadCapacityUnits:  aws.Int64(5),
				WriteCapacityUnits: aws.Int64(5),
			},
		}
	default:
		return fmt.Errorf("unknown table name: %s", tableName)
	}

	if _, err := d.db.CreateTable(context.TODO(), createTableInput); err != nil {
		return fmt.Errorf("failed to create table %s: %v", tableName, err)
	}

	return nil
}

// nextID reserves the next surrogate id for the named sequence.
func (d *DynamoDB) nextID(name string) (uint, error) {
	out, err := d.db.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(d.counterTableName),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
		UpdateExpression: aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{
			"#v": "value",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s counter: %w", name, err)
	}
	id, err := getNumberValue(out.Attributes, "value")
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("counter %s produced invalid id %d", name, id)
	}
	return uint(id), nil
}

func (d *DynamoDB) CreateUser(externalID *int64) (bool, uint, error) {
	if externalID != nil {
		id, found, err := d.FindUserID(*externalID)
		if err != nil {
			return false, 0, err
		}
		if found {
			return false, id, nil
		}
	}

	id, err := d.nextID("user")
	if err != nil {
		return false, 0, err
	}

	item := map[string]types.AttributeValue{
		"id":            &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(id), 10)},
		"is_subscribed": &types.AttributeValueMemberBOOL{Value: true},
		"created_at":    &types.AttributeValueMemberS{Value: timeNow().Format(time.RFC3339Nano)},
	}
	if externalID != nil {
		item["external_id"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(*externalID, 10)}
	}

	if _, err := d.db.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName: aws.String(d.userTableName),
		Item:      item,
	}); err != nil {
		return false, 0, fmt.Errorf("failed to put user: %w", err)
	}
	return true, id, nil
}

func (d *DynamoDB) FindUserID(externalID int64) (uint, bool, error) {
	result, err := d.db.Query(context.TODO(), &dynamodb.QueryInput{
		TableName:              aws.String(d.userTableName),
		IndexName:              aws.String(externalIDIndexName),
		KeyConditionExpression: aws.String("external_id = :external_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":external_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(externalID, 10)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return 0, false, err
	}
	if len(result.Items) == 0 {
		return 0, false, nil
	}
	id, err := getNumberValue(result.Items[0], "id")
	if err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

// ToggleSubscription uses a conditional update as the read-modify-write
// transaction; a concurrent toggle fails the condition and the whole
// cycle is retried.
func (d *DynamoDB) ToggleSubscription(userID uint) (bool, bool, error) {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
	}

	for attempt := 0; attempt < d.toggleMaxAttempts; attempt++ {
		result, err := d.db.GetItem(context.TODO(), &dynamodb.GetItemInput{
			TableName: aws.String(d.userTableName),
			Key:       key,
		})
		if err != nil {
			return false, false, err
		}
		if result.Item == nil {
			return false, false, nil
		}

		current := getBoolValue(result.Item, "is_subscribed")
		next := !current

		_, err = d.db.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
			TableName:           aws.String(d.userTableName),
			Key:                 key,
			UpdateExpression:    aws.String("SET is_subscribed = :next"),
			ConditionExpression: aws.String("is_subscribed = :current"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":next":    &types.AttributeValueMemberBOOL{Value: next},
				":current": &types.AttributeValueMemberBOOL{Value: current},
			},
		})
		if err == nil {
			return next, true, nil
		}
		var conditionErr *types.ConditionalCheckFailedException
		if !errors.As(err, &conditionErr) {
			return false, false, err
		}
	}
	return false, false, fmt.Errorf("subscription toggle for user %d kept losing races", userID)
}

func (d *DynamoDB) AddTurn(userID uint, question string, answer, sourceLink *string) (uint, error) {
	id, err := d.nextID("turn")
	if err != nil {
		return 0, err
	}

	item := map[string]types.AttributeValue{
		"id":          &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(id), 10)},
		"user_id":     &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
		"question":    &types.AttributeValueMemberS{Value: question},
		"is_boundary": &types.AttributeValueMemberBOOL{Value: false},
		"created_at":  &types.AttributeValueMemberS{Value: timeNow().Format(time.RFC3339Nano)},
	}
	if a := model.NormalizeAnswer(answer); a != nil {
		item["answer"] = &types.AttributeValueMemberS{Value: *a}
	}
	if sourceLink != nil {
		item["source_link"] = &types.AttributeValueMemberS{Value: *sourceLink}
	}

	if _, err := d.db.PutItem(context.TODO(), &dynamodb.PutItemInput{
		TableName: aws.String(d.turnTableName),
		Item:      item,
	}); err != nil {
		return 0, fmt.Errorf("failed to put turn: %w", err)
	}
	return id, nil
}

func (d *DynamoDB) SetScore(turnID uint, score int) (bool, error) {
	_, err := d.db.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(d.turnTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(turnID), 10)},
		},
		UpdateExpression:    aws.String("SET score = :score, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":score": &types.AttributeValueMemberN{Value: strconv.Itoa(score)},
			":now":   &types.AttributeValueMemberS{Value: timeNow().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		var conditionErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *DynamoDB) SetBoundary(userID uint, flag bool) error {
	result, err := d.db.Query(context.TODO(), &dynamodb.QueryInput{
		TableName:              aws.String(d.turnTableName),
		IndexName:              aws.String(userIDIndexName),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return err
	}
	if len(result.Items) == 0 {
		return nil
	}
	turnID, err := getNumberValue(result.Items[0], "id")
	if err != nil {
		return err
	}

	_, err = d.db.UpdateItem(context.TODO(), &dynamodb.UpdateItemInput{
		TableName: aws.String(d.turnTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(turnID, 10)},
		},
		UpdateExpression: aws.String("SET is_boundary = :flag, updated_at = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":flag": &types.AttributeValueMemberBOOL{Value: flag},
			":now":  &types.AttributeValueMemberS{Value: timeNow().Format(time.RFC3339Nano)},
		},
	})
	return err
}

func (d *DynamoDB) ListTurnsSince(userID uint, since time.Time) ([]model.Turn, error) {
	items, err := d.queryTurns(userID)
	if err != nil {
		return nil, err
	}

	var turns []model.Turn
	for _, item := range items {
		turn, err := itemToTurn(item)
		if err != nil {
			return nil, err
		}
		if turn.CreatedAt.Before(since) {
			continue
		}
		turns = append(turns, turn)
	}

	// Counter ids are assigned in insertion order, which matches
	// created_at order with ties already broken.
	sort.Slice(turns, func(i, j int) bool {
		return turns[i].ID < turns[j].ID
	})
	return turns, nil
}

func (d *DynamoDB) CountRecentTurns(userID uint, nth int) (int64, *time.Time, error) {
	if nth < 1 {
		return 0, nil, fmt.Errorf("nth must be positive, got %d", nth)
	}
	items, err := d.queryTurns(userID)
	if err != nil {
		return 0, nil, err
	}

	turns := make([]model.Turn, 0, len(items))
	for _, item := range items {
		turn, err := itemToTurn(item)
		if err != nil {
			return 0, nil, err
		}
		turns = append(turns, turn)
	}
	sort.Slice(turns, func(i, j int) bool {
		return turns[i].ID > turns[j].ID
	})

	count := int64(len(turns))
	if count < int64(nth) {
		return count, nil, nil
	}
	createdAt := turns[nth-1].CreatedAt
	return count, &createdAt, nil
}

func (d *DynamoDB) queryTurns(userID uint) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue

	for {
		result, err := d.db.Query(context.TODO(), &dynamodb.QueryInput{
			TableName:              aws.String(d.turnTableName),
			IndexName:              aws.String(userIDIndexName),
			KeyConditionExpression: aws.String("user_id = :user_id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":user_id": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(userID), 10)},
			},
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}
		items = append(items, result.Items...)
		if result.LastEvaluatedKey == nil {
			return items, nil
		}
		lastKey = result.LastEvaluatedKey
	}
}

func itemToTurn(item map[string]types.AttributeValue) (model.Turn, error) {
	var turn model.Turn

	id, err := getNumberValue(item, "id")
	if err != nil {
		return turn, err
	}
	userID, err := getNumberValue(item, "user_id")
	if err != nil {
		return turn, err
	}

	createdAtStr := getStringValue(item, "created_at")
	if createdAtStr == "" {
		return turn, fmt.Errorf("created_at is empty for turn %d", id)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		return turn, fmt.Errorf("failed to parse created_at (%s): %v", createdAtStr, err)
	}

	turn = model.Turn{
		ID:         uint(id),
		UserID:     uint(userID),
		Question:   getStringValue(item, "question"),
		IsBoundary: getBoolValue(item, "is_boundary"),
		CreatedAt:  createdAt,
	}
	if answer := getStringValue(item, "answer"); answer != "" {
		turn.Answer = &answer
	}
	if link := getStringValue(item, "source_link"); link != "" {
		turn.SourceLink = &link
	}
	if _, ok := item["score"]; ok {
		score, err := getNumberValue(item, "score")
		if err != nil {
			return turn, err
		}
		s := int(score)
		turn.Score = &s
	}
	return turn, nil
}

func getStringValue(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func getBoolValue(item map[string]types.AttributeValue, key string) bool {
	if v, ok := item[key].(*types.AttributeValueMemberBOOL); ok {
		return v.Value
	}
	return false
}

func getNumberValue(item map[string]types.AttributeValue, key string) (int64, error) {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		return strconv.ParseInt(v.Value, 10, 64)
	}
	return 0, fmt.Errorf("failed to parse %s", key)
}
