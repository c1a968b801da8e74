package submission

import (
	"context"
	"errors"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/util/log"
	"time"

	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	prefixSubmissionCacheKey = "cache:submission"
	CollectionName           = "submission"
)

type MongoMapper struct {
	conn *monc.Model
}

func NewMongoMapper(config *config.Config) *MongoMapper {
	log.Info("NewSubmissionMongoMapper collection: %s", CollectionName)
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, CollectionName, config.Cache)
	return &MongoMapper{
		conn: conn,
	}
}

func (m *MongoMapper) Insert(ctx context.Context, submission *Submission) error {
	if submission.ID.IsZero() {
		submission.ID = primitive.NewObjectID()
		submission.CreateTime = time.Now()
		submission.UpdateTime = time.Now()
	}
	_, err := m.conn.InsertOneNoCache(ctx, submission)
	return err
}

func (m *MongoMapper) Update(ctx context.Context, submission *Submission) error {
	submission.UpdateTime = time.Now()
	_, err := m.conn.UpdateByIDNoCache(ctx, submission.ID, bson.M{"$set": submission})
	return err
}

func (m *MongoMapper) FindOne(ctx context.Context, id string) (*Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, consts.ErrInvalidObjectId
	}
	var s Submission
	err = m.conn.FindOneNoCache(ctx, &s, bson.M{
		consts.ID: oid,
	})
	if err != nil {
		return nil, consts.ErrNotFound
	}
	return &s, nil
}

// FindByAssignmentAndMember 按作业和成员查找提交记录
func (m *MongoMapper) FindByAssignmentAndMember(ctx context.Context, assignmentID, memberID string) (*Submission, error) {
	var submission Submission
	filter := bson.M{
		consts.AssignmentID: assignmentID,
		consts.MemberID:     memberID,
	}

	err := m.conn.FindOneNoCache(ctx, &submission, filter)
	switch {
	case err == nil:
		return &submission, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, consts.ErrNotFound
	default:
		return nil, err
	}
}
