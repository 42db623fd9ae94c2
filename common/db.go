package common

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

const (
	eventsTable   = "Events"
	gsiSourceDate = "SourceDate"
)

type Db struct {
	dbContext context.Context
	dbClient  *dynamodb.Client
	logger    zerolog.Logger
}

func NewDb(endpointURL string, region string, logger zerolog.Logger) (Db, error) {
	ctx := context.Background()

	// Load config (honors AWS_REGION, AWS_PROFILE, etc.)
	cfg, err := config.LoadDefaultConfig(ctx, func(o *config.LoadOptions) error {
		if region != "" {
			o.Region = region
		}
		return nil
	})
	if err != nil {
		logger.Fatal().Msgf("failed loading AWS config: %v", err)
	}

	if endpointURL != "" {
		// For LocalStack or custom endpoints
		cfg.BaseEndpoint = aws.String(endpointURL)
	}

	client := dynamodb.NewFromConfig(cfg)

	return Db{ctx, client, logger}, nil
}

// UpsertEvent writes the event keyed by its deterministic event_id, so a
// re-scrape of an unchanged source overwrites rather than duplicates.
func (obj Db) UpsertEvent(event Event) error {
	av, err := attributevalue.MarshalMap(event)
	if err != nil {
		obj.logger.Error().Msgf("marshal: %s", err.Error())
		return err
	}

	_, err = obj.dbClient.PutItem(obj.dbContext, &dynamodb.PutItemInput{
		TableName: aws.String(eventsTable),
		Item:      av,
	})
	return err
}

// QueryEvents returns the page of events selected by the filters, plus the
// total match count before pagination. When a source filter is present the
// SourceDate GSI is queried; otherwise this falls back to a filtered scan.
func (obj Db) QueryEvents(filters EventFilters) ([]Event, int, error) {
	var all []Event
	var err error
	if filters.Source != "" {
		all, err = obj.queryBySource(filters)
	} else {
		all, err = obj.scanEvents(filters)
	}
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(all, func(i, j int) bool { return all[i].DateStart < all[j].DateStart })

	total := len(all)
	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= total {
		return []Event{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (obj Db) queryBySource(filters EventFilters) ([]Event, error) {
	keyCond := "source_name = :src"
	eav := map[string]types.AttributeValue{
		":src": &types.AttributeValueMemberS{Value: filters.Source},
	}
	if filters.DateFrom != "" && filters.DateTo != "" {
		keyCond += " AND date_start BETWEEN :from AND :to"
		eav[":from"] = &types.AttributeValueMemberS{Value: filters.DateFrom}
		eav[":to"] = &types.AttributeValueMemberS{Value: filters.DateTo}
	} else if filters.DateFrom != "" {
		keyCond += " AND date_start >= :from"
		eav[":from"] = &types.AttributeValueMemberS{Value: filters.DateFrom}
	} else if filters.DateTo != "" {
		keyCond += " AND date_start <= :to"
		eav[":to"] = &types.AttributeValueMemberS{Value: filters.DateTo}
	}

	filterExpr := buildFilter(filters, eav, false)

	var all []Event
	var eks map[string]types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(eventsTable),
			IndexName:                 aws.String(gsiSourceDate),
			KeyConditionExpression:    aws.String(keyCond),
			ExpressionAttributeValues: eav,
			Limit:                     aws.Int32(100),
			ExclusiveStartKey:         eks,
			ScanIndexForward:          aws.Bool(true), // earliest first
		}
		if filterExpr != "" {
			input.FilterExpression = aws.String(filterExpr)
		}

		out, err := obj.dbClient.Query(obj.dbContext, input)
		if err != nil {
			obj.logger.Error().Msg(err.Error())
			return nil, err
		}

		var page []Event
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		eks = out.LastEvaluatedKey
	}
	return all, nil
}

func (obj Db) scanEvents(filters EventFilters) ([]Event, error) {
	eav := map[string]types.AttributeValue{}
	filterExpr := buildFilter(filters, eav, true)

	scanInput := &dynamodb.ScanInput{
		TableName: aws.String(eventsTable),
	}
	if filterExpr != "" {
		scanInput.FilterExpression = aws.String(filterExpr)
		scanInput.ExpressionAttributeValues = eav
	}

	var all []Event
	paginator := dynamodb.NewScanPaginator(obj.dbClient, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(obj.dbContext)
		if err != nil {
			obj.logger.Error().Msgf("scan failed: %s", err.Error())
			return nil, err
		}
		var events []Event
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &events); err != nil {
			obj.logger.Error().Msgf("unmarshal failed: %s", err.Error())
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}

// buildFilter appends the non-key filter conditions. withDates is true for
// scans, where the date range cannot ride on a key condition.
func buildFilter(filters EventFilters, eav map[string]types.AttributeValue, withDates bool) string {
	var conds []string

	if withDates {
		if filters.DateFrom != "" && filters.DateTo != "" {
			conds = append(conds, "date_start BETWEEN :from AND :to")
			eav[":from"] = &types.AttributeValueMemberS{Value: filters.DateFrom}
			eav[":to"] = &types.AttributeValueMemberS{Value: filters.DateTo}
		} else if filters.DateFrom != "" {
			conds = append(conds, "date_start >= :from")
			eav[":from"] = &types.AttributeValueMemberS{Value: filters.DateFrom}
		} else if filters.DateTo != "" {
			conds = append(conds, "date_start <= :to")
			eav[":to"] = &types.AttributeValueMemberS{Value: filters.DateTo}
		}
	}
	if filters.Area != "" {
		conds = append(conds, "area = :area")
		eav[":area"] = &types.AttributeValueMemberS{Value: filters.Area}
	}
	if filters.Category != "" {
		conds = append(conds, "category = :category")
		eav[":category"] = &types.AttributeValueMemberS{Value: filters.Category}
	}
	if filters.Search != "" {
		conds = append(conds, "(contains(title_ja, :q) OR contains(title_en, :q) OR contains(description_ja, :q) OR contains(venue_name, :q))")
		eav[":q"] = &types.AttributeValueMemberS{Value: filters.Search}
	}

	return strings.Join(conds, " AND ")
}

// ListDistinct returns the sorted distinct values of one enumerable field.
// Only area, category and source_name are supported.
func (obj Db) ListDistinct(field string) ([]string, error) {
	switch field {
	case "area", "category", "source_name":
	default:
		return nil, fmt.Errorf("unsupported distinct field: %s", field)
	}

	scanInput := &dynamodb.ScanInput{
		TableName:                aws.String(eventsTable),
		ProjectionExpression:     aws.String("#f"),
		ExpressionAttributeNames: map[string]string{"#f": field},
	}

	seen := map[string]bool{}
	paginator := dynamodb.NewScanPaginator(obj.dbClient, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(obj.dbContext)
		if err != nil {
			obj.logger.Error().Msgf("scan failed: %s", err.Error())
			return nil, err
		}
		for _, item := range page.Items {
			if av, ok := item[field].(*types.AttributeValueMemberS); ok && av.Value != "" {
				seen[av.Value] = true
			}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// QueryEventsMissingEnglish returns stored events without an English title,
// for the translation backfill pass.
func (obj Db) QueryEventsMissingEnglish() ([]Event, error) {
	scanInput := &dynamodb.ScanInput{
		TableName:        aws.String(eventsTable),
		FilterExpression: aws.String("(attribute_not_exists(title_en) OR title_en = :empty) AND title_ja <> :empty"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberS{Value: ""},
		},
	}

	var all []Event
	paginator := dynamodb.NewScanPaginator(obj.dbClient, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(obj.dbContext)
		if err != nil {
			obj.logger.Error().Msgf("scan failed: %s", err.Error())
			return nil, err
		}
		var events []Event
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &events); err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}

func (obj Db) UpdateEventEnglishTitle(eventID, titleEN string) error {
	_, err := obj.dbClient.UpdateItem(obj.dbContext, &dynamodb.UpdateItemInput{
		TableName: aws.String(eventsTable),
		Key: map[string]types.AttributeValue{
			"event_id": &types.AttributeValueMemberS{Value: eventID},
		},
		UpdateExpression: aws.String("SET title_en = :title"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title": &types.AttributeValueMemberS{Value: titleEN},
		},
	})
	if err != nil {
		obj.logger.Error().Msgf("Couldn't update event %v: %v", eventID, err)
	}
	return err
}

// PurgeEndedEvents deletes events whose run ended before the cutoff. Events
// without a date_end are judged by date_start.
func (obj Db) PurgeEndedEvents(cutoff time.Time) error {
	cutoffStr := cutoff.Format("2006-01-02")
	obj.logger.Info().Msgf("Purging events ended before %s", cutoffStr)

	// 1. Scan with filter
	scanInput := &dynamodb.ScanInput{
		TableName:        aws.String(eventsTable),
		FilterExpression: aws.String("(attribute_exists(date_end) AND date_end <> :empty AND date_end < :cutoff) OR ((attribute_not_exists(date_end) OR date_end = :empty) AND date_start < :cutoff)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cutoff": &types.AttributeValueMemberS{Value: cutoffStr},
			":empty":  &types.AttributeValueMemberS{Value: ""},
		},
	}

	var toDelete []Event
	paginator := dynamodb.NewScanPaginator(obj.dbClient, scanInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(obj.dbContext)
		if err != nil {
			obj.logger.Error().Msgf("scan failed: %s", err.Error())
			return err
		}
		var events []Event
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &events); err != nil {
			obj.logger.Error().Msgf("unmarshal failed: %s", err.Error())
			return err
		}
		toDelete = append(toDelete, events...)
	}

	obj.logger.Info().Msgf("Found %d events to delete", len(toDelete))
	// 2. Batch delete (max 25 per request)
	for i := 0; i < len(toDelete); i += 25 {
		end := i + 25
		if end > len(toDelete) {
			end = len(toDelete)
		}
		writeReqs := make([]types.WriteRequest, 0, end-i)
		for _, e := range toDelete[i:end] {
			writeReqs = append(writeReqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"event_id": &types.AttributeValueMemberS{Value: e.EventID},
					},
				},
			})
		}
		_, err := obj.dbClient.BatchWriteItem(obj.dbContext, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				eventsTable: writeReqs,
			},
		})
		if err != nil {
			obj.logger.Error().Msgf("batch delete failed: %s", err.Error())
			return err
		}
	}

	return nil
}

func (obj Db) CreateEventsTable() error {
	// Check if table exists
	_, err := obj.dbClient.DescribeTable(obj.dbContext, &dynamodb.DescribeTableInput{
		TableName: aws.String(eventsTable),
	})
	if err == nil {
		obj.logger.Info().Msgf("Table %q already exists. Skipping creation.", eventsTable)
		return nil
	}

	// PK: event_id (S)
	// GSI: SourceDate (source_name PK, date_start SK); date_start is an ISO date string
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(eventsTable),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("event_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("source_name"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("date_start"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("event_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(gsiSourceDate),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("source_name"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("date_start"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest, // on-demand: no capacity planning
	}

	obj.logger.Info().Msgf("Creating table %q ...", eventsTable)
	if _, err := obj.dbClient.CreateTable(obj.dbContext, input); err != nil {
		return fmt.Errorf("CreateTable: %w", err)
	}

	// Wait for ACTIVE
	waiter := dynamodb.NewTableExistsWaiter(obj.dbClient)
	if err := waiter.Wait(obj.dbContext, &dynamodb.DescribeTableInput{TableName: aws.String(eventsTable)}, 5*time.Minute); err != nil {
		return fmt.Errorf("waiting for table ACTIVE: %w", err)
	}

	return nil
}
