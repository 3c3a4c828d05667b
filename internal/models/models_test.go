package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserJSONHidesPasswordAndDerivesActive(t *testing.T) {
	u := User{Email: "a@b.co", Password: "$2a$10$hash", EmailVerified: true}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotContains(t, out, "password")
	assert.Equal(t, true, out["active"])

	u.Suspended = true
	raw, err = json.Marshal(&u)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, false, out["active"])
}

func TestUserBeforeCreateDefaults(t *testing.T) {
	u := User{Email: "  Someone@Example.COM "}
	u.BeforeCreate()

	assert.False(t, u.ID.IsZero())
	assert.Equal(t, "someone@example.com", u.Email)
	assert.Equal(t, RoleUser, u.Role)
	assert.Equal(t, DefaultImageURL, u.ProfileImg.URL)
	assert.Equal(t, DefaultImageURL, u.CoverImg.URL)
	assert.False(t, u.Active())
	assert.NotNil(t, u.WishList)
}

func TestAverageRank(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	u := User{Rank: []Rank{{UserID: a, Rank: 5}, {UserID: b, Rank: 2}}}

	avg, mine := u.AverageRank(b)
	assert.InDelta(t, 3.5, avg, 0.0001)
	assert.Equal(t, 2, mine)

	avg, mine = (&User{}).AverageRank(a)
	assert.Zero(t, avg)
	assert.Zero(t, mine)
}

func TestPostRequestValidation(t *testing.T) {
	req := PostRequest{
		Title:       "Bike",
		Info:        "A city bike",
		Price:       -5,
		Country:     "Israel",
		City:        "Haifa",
		CategoryURL: "bikes",
	}

	err := ValidateStruct(&req)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "price", verr.Fields[0].Field)

	req.Price = 120
	req.Range = "forever"
	err = ValidateStruct(&req)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "range", verr.Fields[0].Field)

	req.Range = RangeLongTerm
	assert.NoError(t, ValidateStruct(&req))
}

func TestCategoryRequestValidation(t *testing.T) {
	err := ValidateStruct(&CategoryRequest{Name: "E", URLName: "electronics", Info: "things"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Fields[0].Field)
}

func TestPostBeforeCreateDefaults(t *testing.T) {
	p := Post{}
	p.BeforeCreate()

	assert.Equal(t, RangeShortTerm, p.Range)
	assert.Equal(t, TypeRent, p.Type)
	assert.Equal(t, DefaultCategoryURL, p.CategoryURL)
	assert.True(t, p.Active)
	assert.Empty(t, p.Likes)
}

func TestNewPostViewKeepsLikeOrder(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	p := &Post{Likes: []primitive.ObjectID{c, a, b}}

	view := NewPostView(p, nil, []UserSummary{{ID: a}, {ID: b}, {ID: c}})
	require.Len(t, view.Likes, 3)
	assert.Equal(t, c, view.Likes[0].ID)
	assert.Equal(t, a, view.Likes[1].ID)
	assert.Equal(t, b, view.Likes[2].ID)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Len(t, out["likes"], 3)
	assert.Nil(t, out["creator_id"])
}

func TestPostFilterBson(t *testing.T) {
	lo, hi := 10.0, 100.0
	creator := primitive.NewObjectID()
	f := PostFilter{
		Title:      "a.b",
		MinPrice:   &lo,
		MaxPrice:   &hi,
		Categories: []string{"bikes", "tools"},
		CreatorID:  creator,
	}

	doc := f.Bson()
	assert.Equal(t, primitive.Regex{Pattern: `a\.b`, Options: "i"}, doc["title"])
	assert.Equal(t, bson.M{"$gte": 10.0, "$lt": 100.0}, doc["price"])
	assert.Equal(t, bson.M{"$in": []string{"bikes", "tools"}}, doc["category_url"])
	assert.Equal(t, creator, doc["creator_id"])

	assert.Empty(t, PostFilter{}.Bson())
}

func TestListQuery(t *testing.T) {
	q := ListQuery{Page: 3, PerPage: 15, Sort: "createdAt", Descending: true}
	assert.Equal(t, int64(30), q.Skip())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, q.SortDoc())

	assert.Equal(t, int64(0), ListQuery{Page: 0, PerPage: 10}.Skip())
}

func TestThreadSortEntries(t *testing.T) {
	th := Thread{Messages: []ChatEntry{{Seq: 3}, {Seq: 1}, {Seq: 2}}}
	th.SortEntries()
	assert.Equal(t, []int64{1, 2, 3}, []int64{th.Messages[0].Seq, th.Messages[1].Seq, th.Messages[2].Seq})
}

func TestTokenRecordExpired(t *testing.T) {
	now := time.Now()
	r := TokenRecord{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, r.Expired(now))
	assert.True(t, r.Expired(now.Add(2*time.Minute)))
}
