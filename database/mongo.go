package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"regdesk/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	userFormsCollection            = "userforms"
	tradingRegistrationsCollection = "tradingregistrations"
	paymentsCollection             = "payments"
)

// listProjection drops file sub-documents from trading registration lists.
var listProjection = bson.M{
	"aadharDocument":    0,
	"panDocument":       0,
	"signatureDocument": 0,
}

// OpenMongo connects to MongoDB. An unreachable server is logged and the
// process keeps running; the driver reconnects on the next operation.
func OpenMongo(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	db := client.Database(dbName)
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Error("MongoDB connection failed", zap.Error(err))
	} else {
		log.Info("Connected to MongoDB", zap.String("database", dbName))
		if err := EnsureIndexes(ctx, db); err != nil {
			log.Error("Failed to create MongoDB indexes", zap.Error(err))
		}
	}

	return NewMongoStore(db), nil
}

// NewMongoStore builds the repositories on top of db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		UserForms:            &mongoUserForms{coll: db.Collection(userFormsCollection)},
		TradingRegistrations: &mongoTradingRegistrations{coll: db.Collection(tradingRegistrationsCollection)},
		Payments:             &mongoPayments{coll: db.Collection(paymentsCollection)},
		ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		close: db.Client().Disconnect,
	}
}

// EnsureIndexes creates the unique and sort indexes. Creating an existing
// index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	ascending := func(field string) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
	}

	indexes := map[string][]mongo.IndexModel{
		userFormsCollection: {unique("email"), unique("aadharNumber"), ascending("createdAt")},
		tradingRegistrationsCollection: {
			unique("email"), unique("aadharNumber"),
			ascending("registrationStatus"), ascending("submissionDate"),
		},
		paymentsCollection: {ascending("paymentStatus"), ascending("createdAt")},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func validObjectID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func searchFilter(filter bson.M, search string) {
	if search == "" {
		return
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	filter["$or"] = bson.A{
		bson.M{"firstName": pattern},
		bson.M{"lastName": pattern},
		bson.M{"email": pattern},
		bson.M{"phone": pattern},
	}
}

// mongoPage counts and fetches one page of coll.
func mongoPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, q ListQuery, sorts sortKeys, projection bson.M) ([]T, int64, error) {
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapMongoError(err)
	}

	sortKey, _ := sorts.resolve(q.SortBy)
	dir := 1
	if q.Desc {
		dir = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortKey, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, mapMongoError(err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0, q.Limit)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, mapMongoError(err)
	}
	return items, total, nil
}

type mongoUserForms struct {
	coll *mongo.Collection
}

func (r *mongoUserForms) Create(ctx context.Context, form *models.UserFormSubmission) error {
	form.ID = primitive.NewObjectID().Hex()
	now := time.Now()
	form.CreatedAt, form.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, form)
	return mapMongoError(err)
}

func (r *mongoUserForms) List(ctx context.Context, q ListQuery) ([]models.UserFormSubmission, int64, error) {
	filter := bson.M{}
	searchFilter(filter, q.Search)
	return mongoPage[models.UserFormSubmission](ctx, r.coll, filter, q, userFormSorts, nil)
}

type mongoTradingRegistrations struct {
	coll *mongo.Collection
}

func (r *mongoTradingRegistrations) Create(ctx context.Context, reg *models.TradingRegistration) error {
	reg.ID = primitive.NewObjectID().Hex()
	now := time.Now()
	reg.CreatedAt, reg.UpdatedAt = now, now
	_, err := r.coll.InsertOne(ctx, reg)
	return mapMongoError(err)
}

func (r *mongoTradingRegistrations) List(ctx context.Context, q ListQuery) ([]models.TradingRegistration, int64, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["registrationStatus"] = q.Status
	}
	searchFilter(filter, q.Search)
	return mongoPage[models.TradingRegistration](ctx, r.coll, filter, q, tradingSorts, listProjection)
}

func (r *mongoTradingRegistrations) Get(ctx context.Context, id string) (*models.TradingRegistration, error) {
	if !validObjectID(id) {
		return nil, ErrNotFound
	}
	var reg models.TradingRegistration
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&reg); err != nil {
		return nil, mapMongoError(err)
	}
	return &reg, nil
}

func (r *mongoTradingRegistrations) Update(ctx context.Context, reg *models.TradingRegistration) error {
	if !validObjectID(reg.ID) {
		return ErrNotFound
	}
	reg.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": reg.ID}, reg)
	if err != nil {
		return mapMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoTradingRegistrations) UpdateStatus(ctx context.Context, id string, status models.RegistrationStatus, adminNotes *string) (*models.TradingRegistration, error) {
	set := bson.M{"registrationStatus": status, "updatedAt": time.Now()}
	if adminNotes != nil {
		set["adminNotes"] = *adminNotes
	}
	return r.findAndSet(ctx, id, set)
}

func (r *mongoTradingRegistrations) SetVerification(ctx context.Context, id string, flag models.VerificationFlag, value bool) (*models.TradingRegistration, error) {
	return r.findAndSet(ctx, id, bson.M{flag.DocumentPath(): value, "updatedAt": time.Now()})
}

func (r *mongoTradingRegistrations) findAndSet(ctx context.Context, id string, set bson.M) (*models.TradingRegistration, error) {
	if !validObjectID(id) {
		return nil, ErrNotFound
	}
	var reg models.TradingRegistration
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&reg)
	if err != nil {
		return nil, mapMongoError(err)
	}
	return &reg, nil
}

func (r *mongoTradingRegistrations) Delete(ctx context.Context, id string) error {
	if !validObjectID(id) {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoTradingRegistrations) Stats(ctx context.Context, since time.Time) (*models.RegistrationStats, error) {
	stats := models.NewRegistrationStats()

	var byStatus []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := r.aggregate(ctx, "$registrationStatus", &byStatus); err != nil {
		return nil, err
	}
	for _, row := range byStatus {
		stats.ByStatus[models.RegistrationStatus(row.Status)] = row.Count
		stats.Total += row.Count
	}

	today, err := r.coll.CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		return nil, mapMongoError(err)
	}
	stats.Today = today

	var byVerification []struct {
		Verified bool  `bson:"_id"`
		Count    int64 `bson:"count"`
	}
	fullyVerified := bson.M{"$and": bson.A{
		"$" + models.AadharVerified.DocumentPath(),
		"$" + models.SignatureVerified.DocumentPath(),
		"$" + models.EmailVerified.DocumentPath(),
		"$" + models.PhoneVerified.DocumentPath(),
	}}
	if err := r.aggregate(ctx, fullyVerified, &byVerification); err != nil {
		return nil, err
	}
	for _, row := range byVerification {
		if row.Verified {
			stats.FullyVerified = row.Count
		} else {
			stats.NotFullyVerified = row.Count
		}
	}

	return stats, nil
}

// aggregate counts documents grouped by key into out.
func (r *mongoTradingRegistrations) aggregate(ctx context.Context, key interface{}, out interface{}) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: key},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return mapMongoError(err)
	}
	defer cursor.Close(ctx)
	return mapMongoError(cursor.All(ctx, out))
}

type mongoPayments struct {
	coll *mongo.Collection
}

func (r *mongoPayments) Create(ctx context.Context, payment *models.PaymentRecord) error {
	payment.ID = primitive.NewObjectID().Hex()
	payment.CreatedAt = time.Now()
	_, err := r.coll.InsertOne(ctx, payment)
	return mapMongoError(err)
}

func (r *mongoPayments) List(ctx context.Context, q ListQuery) ([]models.PaymentRecord, int64, error) {
	filter := bson.M{}
	if q.Status != "" {
		filter["paymentStatus"] = q.Status
	}
	return mongoPage[models.PaymentRecord](ctx, r.coll, filter, q, paymentSorts, nil)
}
