package models

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListQuery is a parsed page/sort request for list and search endpoints.
type ListQuery struct {
	Page       int
	PerPage    int
	Sort       string
	Descending bool
}

func (q ListQuery) Skip() int64 {
	if q.Page < 1 {
		return 0
	}
	return int64((q.Page - 1) * q.PerPage)
}

func (q ListQuery) SortDoc() bson.D {
	dir := 1
	if q.Descending {
		dir = -1
	}
	// _id breaks ties so pages stay stable
	return bson.D{{Key: q.Sort, Value: dir}, {Key: "_id", Value: dir}}
}

func (q ListQuery) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(q.SortDoc()).
		SetSkip(q.Skip()).
		SetLimit(int64(q.PerPage))
}
