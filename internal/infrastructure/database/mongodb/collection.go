package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SweepReportCollection is where completed sweep run reports are archived
const SweepReportCollection = "sweep_reports"

type CollectionManager struct {
	client *Client
}

func NewCollectionManager(client *Client) *CollectionManager {
	return &CollectionManager{client: client}
}

// Available reports whether the archive backend can be used
func (cm *CollectionManager) Available() bool {
	return cm.client.Available()
}

// EnsureSweepReportCollection creates the archive collection indexes.
// Reports are append-only; queries are by start time and run id.
func (cm *CollectionManager) EnsureSweepReportCollection(ctx context.Context) error {
	if !cm.client.Available() {
		return nil
	}

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "started_at", Value: -1}},
			Options: options.Index().SetName("idx_started_at"),
		},
		{
			Keys:    bson.D{{Key: "run_id", Value: 1}},
			Options: options.Index().SetName("idx_run_id").SetUnique(true),
		},
	}

	if err := cm.client.CreateIndexes(ctx, SweepReportCollection, models); err != nil {
		return fmt.Errorf("failed to ensure %s indexes: %w", SweepReportCollection, err)
	}

	return nil
}

// InsertReport archives one sweep report document
func (cm *CollectionManager) InsertReport(ctx context.Context, doc interface{}) error {
	if !cm.client.Available() {
		return fmt.Errorf("MongoDB archive unavailable")
	}

	if _, err := cm.client.Collection(SweepReportCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert sweep report: %w", err)
	}
	return nil
}

// LatestReports returns up to limit archived reports, newest first
func (cm *CollectionManager) LatestReports(ctx context.Context, limit int64) ([]bson.M, error) {
	if !cm.client.Available() {
		return nil, fmt.Errorf("MongoDB archive unavailable")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := cm.client.Collection(SweepReportCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []bson.M
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode sweep reports: %w", err)
	}

	return reports, nil
}
