package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	appErrors "github.com/unclebandit/aisdr-backend/internal/errors"
	"github.com/unclebandit/aisdr-backend/internal/model"
)

// campaignDocument is the stored shape; the identifier is the ObjectID.
type campaignDocument struct {
	ID               bson.ObjectID   `bson:"_id,omitempty"`
	Name             string          `bson:"name,omitempty"`
	Prompt           string          `bson:"prompt,omitempty"`
	Filters          *model.Filters  `bson:"filters,omitempty"`
	CampaignPeople   []model.Person  `bson:"campaignPeople"`
	CampaignContacts []model.Contact `bson:"campaignContacts"`
	CreatedAt        time.Time       `bson:"createdAt"`
}

func (d campaignDocument) toModel() *model.Campaign {
	people := d.CampaignPeople
	if people == nil {
		people = []model.Person{}
	}
	contacts := d.CampaignContacts
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return &model.Campaign{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Prompt:           d.Prompt,
		Filters:          d.Filters,
		CampaignPeople:   people,
		CampaignContacts: contacts,
		CreatedAt:        d.CreatedAt.UTC(),
	}
}

// MongoCampaignRepository stores campaigns as documents of one collection.
type MongoCampaignRepository struct {
	Collection *mongo.Collection
}

func NewMongoCampaignRepository(client *mongo.Client, database, collection string) *MongoCampaignRepository {
	return &MongoCampaignRepository{Collection: client.Database(database).Collection(collection)}
}

var latestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

func (r *MongoCampaignRepository) Insert(ctx context.Context, c *model.Campaign) error {
	if err := c.Validate(); err != nil {
		return err
	}

	doc := campaignDocument{
		ID:               bson.NewObjectID(),
		Name:             c.Name,
		Prompt:           c.Prompt,
		Filters:          c.Filters,
		CampaignPeople:   c.CampaignPeople,
		CampaignContacts: c.CampaignContacts,
		CreatedAt:        time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.Collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}

	c.ID = doc.ID.Hex()
	c.CreatedAt = doc.CreatedAt
	return nil
}

func (r *MongoCampaignRepository) ListAll(ctx context.Context) ([]*model.Campaign, error) {
	cursor, err := r.Collection.Find(ctx, bson.D{}, options.Find().SetSort(latestFirst))
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	var docs []campaignDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode campaigns: %w", err)
	}

	campaigns := make([]*model.Campaign, 0, len(docs))
	for _, d := range docs {
		campaigns = append(campaigns, d.toModel())
	}
	return campaigns, nil
}

func (r *MongoCampaignRepository) FindLatest(ctx context.Context) (*model.Campaign, error) {
	var doc campaignDocument
	err := r.Collection.FindOne(ctx, bson.D{}, options.FindOne().SetSort(latestFirst)).Decode(&doc)
	if err != nil {
		return nil, findLatestError(err)
	}
	return doc.toModel(), nil
}

func findLatestError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return appErrors.NewCampaignNotFound()
	}
	return fmt.Errorf("find latest campaign: %w", err)
}

var _ CampaignRepositoryInterface = (*MongoCampaignRepository)(nil)
