package services

import (
	"context"
	"log/slog"
	"sort"

	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PostService struct {
	posts  models.PostRepo
	users  models.UserRepo
	tx     models.Transactor
	policy *policy.Policy
	media  *MediaService
	logger *slog.Logger
}

func NewPostService(posts models.PostRepo, users models.UserRepo, tx models.Transactor, pol *policy.Policy, media *MediaService) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		tx:     tx,
		policy: pol,
		media:  media,
		logger: media.logger,
	}
}

func (ps *PostService) ListPosts(ctx context.Context, q models.ListQuery) (*PostPage, error) {
	return ps.page(ctx, models.PostFilter{}, q)
}

func (ps *PostService) GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostView, error) {
	return ps.posts.GetPostView(ctx, id)
}

func (ps *PostService) UserPosts(ctx context.Context, userID primitive.ObjectID, q models.ListQuery) (*PostPage, error) {
	return ps.page(ctx, models.PostFilter{CreatorID: userID}, q)
}

func (ps *PostService) CountPosts(ctx context.Context) (int64, error) {
	return ps.posts.CountPosts(ctx, models.PostFilter{})
}

func (ps *PostService) CountMine(ctx context.Context, actor policy.Actor) (int64, error) {
	return ps.posts.CountPosts(ctx, models.PostFilter{CreatorID: actor.ID})
}

// PostPage is one page of matches plus the total match count.
type PostPage struct {
	Count int64              `json:"count"`
	Posts []*models.PostView `json:"posts"`
}

// Search matches a price range of [min, max) and defaults it to the full range.
func (ps *PostService) Search(ctx context.Context, filter models.PostFilter, q models.ListQuery) (*PostPage, error) {
	if filter.MinPrice == nil {
		lo := float64(models.MinSearchPrice)
		filter.MinPrice = &lo
	}
	if filter.MaxPrice == nil {
		hi := float64(models.MaxSearchPrice)
		filter.MaxPrice = &hi
	}
	if *filter.MaxPrice < *filter.MinPrice {
		return nil, models.NewValidationError("max", "gtefield", "max must not be below min")
	}
	return ps.page(ctx, filter, q)
}

func (ps *PostService) page(ctx context.Context, filter models.PostFilter, q models.ListQuery) (*PostPage, error) {
	posts, err := ps.posts.ListPosts(ctx, filter, q)
	if err != nil {
		return nil, err
	}
	count, err := ps.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PostPage{Count: count, Posts: posts}, nil
}

// CountByCategory tallies posts per category slug, largest first.
func (ps *PostService) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	slugs, err := ps.posts.PostCategories(ctx)
	if err != nil {
		return nil, err
	}
	tally := map[string]int{}
	for _, s := range slugs {
		tally[s]++
	}
	out := make([]models.CategoryCount, 0, len(tally))
	for name, n := range tally {
		out = append(out, models.CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// CreatePost always takes the creator from the caller, never the body.
func (ps *PostService) CreatePost(ctx context.Context, actor policy.Actor, req *models.PostRequest) (*models.Post, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	return ps.posts.CreatePost(ctx, req.ToPost(actor.ID))
}

func (ps *PostService) UpdatePost(ctx context.Context, actor policy.Actor, id primitive.ObjectID, req *models.PostUpdateRequest) (*models.Post, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	post, err := ps.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.policy.CanEditPost(actor, post); err != nil {
		return nil, err
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, models.NewValidationError("body", "required", "no editable fields supplied")
	}
	return ps.posts.UpdatePost(ctx, id, fields)
}

func (ps *PostService) ChangeRange(ctx context.Context, actor policy.Actor, id primitive.ObjectID, req *models.RangeRequest) (*models.Post, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	post, err := ps.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.policy.CanChangePostState(actor, post); err != nil {
		return nil, err
	}
	if err := ps.policy.CanEditPost(actor, post); err != nil {
		return nil, err
	}
	return ps.posts.UpdatePost(ctx, id, bson.M{"range": req.Range})
}

func (ps *PostService) ChangeActive(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*models.Post, error) {
	post, err := ps.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.policy.CanChangePostState(actor, post); err != nil {
		return nil, err
	}
	return ps.posts.UpdatePost(ctx, id, bson.M{"active": !post.Active})
}

// DeleteResult reports image deletions that failed after the post was removed.
type DeleteResult struct {
	FailedImages []string `json:"failedImages"`
}

// DeletePost removes the post first. Image cleanup is best effort and
// never undoes the deletion.
func (ps *PostService) DeletePost(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*DeleteResult, error) {
	post, err := ps.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ps.policy.CanEditPost(actor, post); err != nil {
		return nil, err
	}
	if err := ps.posts.DeletePost(ctx, id); err != nil {
		return nil, err
	}
	if err := ps.users.PurgeFromWishLists(ctx, id); err != nil {
		ps.logger.Error("Failed to purge post from wishlists", "post_id", id.Hex(), "error", err)
	}

	ids := make([]string, 0, len(post.Img))
	for _, img := range post.Img {
		ids = append(ids, img.ImgID)
	}
	return &DeleteResult{FailedImages: ps.media.DeleteImages(ctx, ids)}, nil
}

// LikeResult is the post after a like toggle.
type LikeResult struct {
	Liked bool                 `json:"liked"`
	Likes []models.UserSummary `json:"posts"`
	Post  *models.PostView     `json:"post"`
}

// ToggleLike likes or unlikes the post for the caller and mirrors the change
// into the caller's wishlist, unless the caller created the post. Both writes
// share one transaction.
func (ps *PostService) ToggleLike(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*LikeResult, error) {
	var liked bool
	err := ps.tx.WithTransaction(ctx, func(ctx context.Context) error {
		post, err := ps.posts.GetPostByID(ctx, id)
		if err != nil {
			return err
		}
		own := post.CreatorID == actor.ID

		if post.LikedBy(actor.ID) {
			if _, err := ps.posts.RemoveLike(ctx, id, actor.ID); err != nil {
				return err
			}
			liked = false
			if own {
				return nil
			}
			return ps.users.RemoveFromWishList(ctx, actor.ID, id)
		}

		if _, err := ps.posts.AddLike(ctx, id, actor.ID); err != nil {
			return err
		}
		liked = true
		if own {
			return nil
		}
		return ps.users.AddToWishList(ctx, actor.ID, id)
	})
	if err != nil {
		return nil, err
	}

	view, err := ps.posts.GetPostView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, Likes: view.Likes, Post: view}, nil
}

type LikeSummary struct {
	Count int                  `json:"count"`
	Likes []models.UserSummary `json:"likes"`
}

func (ps *PostService) CheckLikes(ctx context.Context, id primitive.ObjectID) (*LikeSummary, error) {
	view, err := ps.posts.GetPostView(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LikeSummary{Count: len(view.Likes), Likes: view.Likes}, nil
}

// TopLikes returns the first n likers in stored order.
func (ps *PostService) TopLikes(ctx context.Context, id primitive.ObjectID, n int) ([]models.UserSummary, error) {
	view, err := ps.posts.GetPostView(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(view.Likes) > n {
		return view.Likes[:n], nil
	}
	return view.Likes, nil
}

// DeleteImage removes one image from the post and from the media host.
func (ps *PostService) DeleteImage(ctx context.Context, actor policy.Actor, postID primitive.ObjectID, imgID string) (*models.Post, error) {
	post, err := ps.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := ps.policy.CanEditPost(actor, post); err != nil {
		return nil, err
	}
	if !post.HasImage(imgID) {
		return nil, models.ErrNotFound
	}
	if err := ps.media.DeleteImage(ctx, imgID); err != nil {
		return nil, err
	}
	if _, err := ps.posts.RemoveImage(ctx, postID, imgID); err != nil {
		return nil, err
	}
	return ps.posts.GetPostByID(ctx, postID)
}

// DiscardUploads deletes images uploaded for a post the user never saved.
func (ps *PostService) DiscardUploads(ctx context.Context, req *models.ImageIDsRequest) (*DeleteResult, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(req.Images))
	for _, ref := range req.Images {
		ids = append(ids, ref.ImgID)
	}
	return &DeleteResult{FailedImages: ps.media.DeleteImages(ctx, ids)}, nil
}
