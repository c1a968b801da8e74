package essay

import (
	"context"
	"scorewise/biz/infrastructure/config"
	"scorewise/biz/infrastructure/consts"
	"scorewise/biz/infrastructure/util/log"
	"time"

	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	prefixEssayCacheKey = "cache:essay"
	CollectionName      = "essay"
)

type MongoMapper struct {
	conn *monc.Model
}

func NewMongoMapper(config *config.Config) *MongoMapper {
	log.Info("NewEssayMongoMapper collection: %s", CollectionName)
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, CollectionName, config.Cache)
	return &MongoMapper{
		conn: conn,
	}
}

// Insert 首次提交创建云端记录 original_text仅在此处写入
func (m *MongoMapper) Insert(ctx context.Context, req *InsertEssayRequest) (*Essay, error) {
	now := time.Now()
	e := &Essay{
		ID:           primitive.NewObjectID(),
		AuthorID:     req.AuthorID,
		ExamKind:     req.ExamKind,
		PromptRef:    req.PromptRef,
		Text:         req.Text,
		OriginalText: req.Text,
		WordCount:    req.WordCount,
		CreateTime:   now,
		UpdateTime:   now,
	}
	_, err := m.conn.InsertOneNoCache(ctx, e)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Update 再次提交 只改正文和字数 original_text不参与更新
func (m *MongoMapper) Update(ctx context.Context, id string, req *UpdateEssayRequest) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return consts.ErrInvalidObjectId
	}
	_, err = m.conn.UpdateByIDNoCache(ctx, oid, bson.M{"$set": bson.M{
		"text":            req.Text,
		"word_count":      req.WordCount,
		consts.UpdateTime: time.Now(),
	}})
	return err
}

func (m *MongoMapper) FindOne(ctx context.Context, id string) (*Essay, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, consts.ErrInvalidObjectId
	}
	var e Essay
	err = m.conn.FindOneNoCache(ctx, &e, bson.M{
		consts.ID: oid,
	})
	if err != nil {
		return nil, consts.ErrNotFound
	}
	return &e, nil
}

// FindByAuthor 分页查询某个用户的作文记录
func (m *MongoMapper) FindByAuthor(ctx context.Context, authorID string, page, pageSize int64) ([]*Essay, int64, error) {
	var essays []*Essay
	filter := bson.M{consts.AuthorID: authorID}

	// 获取总数
	total, err := m.conn.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	// 分页查询
	skip := (page - 1) * pageSize
	err = m.conn.Find(ctx, &essays, filter, &options.FindOptions{
		Skip:  &skip,
		Limit: &pageSize,
		Sort:  bson.M{consts.CreateTime: -1},
	})
	if err != nil {
		return nil, 0, err
	}

	return essays, total, nil
}
