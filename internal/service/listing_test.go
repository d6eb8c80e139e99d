package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tarvee/internal/catalog"
	"tarvee/internal/model"
	repoMocks "tarvee/internal/repository/mocks"
	"tarvee/internal/storage"
	storeMocks "tarvee/internal/storage/mocks"
	"tarvee/internal/validation"
)

var fixedNow = time.UnixMilli(1700000000000)

type recorder struct {
	created []string
	failed  []string
}

func (r *recorder) ListingCreated(category string)   { r.created = append(r.created, category) }
func (r *recorder) ListingCreateFailed(stage string) { r.failed = append(r.failed, stage) }
func (r *recorder) AuthEvent(event, outcome string)  {}

func validInput() CreateListingInput {
	return CreateListingInput{
		Title:            "Algorithms 101",
		Description:      "Clean copy, no highlights.",
		Category:         "dsa",
		Condition:        "pre-loved",
		Price:            250,
		Image:            strings.NewReader("png-bytes"),
		ImageFilename:    "cover photo.png",
		ImageContentType: "image/png",
		ImageSize:        9,
	}
}

func newListingService(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver, rec *recorder) ListingService {
	return NewListingService(mRepo, mRepo, mStore, mURL, ListingOptions{
		MaxImageBytes: 1 << 20,
		Metrics:       rec,
		Now:           func() time.Time { return fixedNow },
	})
}

const wantKey = "books/owner-1/1700000000000_cover_photo.png"

func TestListingService_Create(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		mutate     func(in *CreateListingInput)
		setupMocks func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver)
		wantErr    error
		wantErrMsg string
		wantFields map[string]string
		wantStage  string
	}{
		{
			name: "happy path",
			setupMocks: func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver) {
				mStore.On("Put", mock.Anything, wantKey, mock.Anything, storage.PutObjectOptions{
					Size:        9,
					ContentType: "image/png",
					Metadata:    map[string]string{"original-filename": "cover photo.png", "owner-id": "owner-1"},
				}).Return(storage.ObjectInfo{Key: wantKey, Size: 9}, nil)
				mURL.On("URL", mock.Anything, wantKey).Return("https://cdn.example/"+wantKey, nil)
				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *model.Listing) bool {
					return l.ID == "" && l.OwnerID == "owner-1" && l.Condition == model.ConditionPreLoved &&
						l.ImageURL == "https://cdn.example/"+wantKey && l.Price == 250
				})).Return(&model.Listing{ID: "gen-id", Category: "dsa"}, nil)
			},
		},
		{
			name:   "price zero is rejected before any network call",
			mutate: func(in *CreateListingInput) { in.Price = 0 },
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{"price": "Price must be a positive number."},
			wantStage:  "validation",
		},
		{
			name:   "price below one cent is rejected before any network call",
			mutate: func(in *CreateListingInput) { in.Price = 0.004 },
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{"price": "Price must be a positive number."},
			wantStage:  "validation",
		},
		{
			name:   "svg image is rejected",
			mutate: func(in *CreateListingInput) { in.ImageContentType = "image/svg+xml" },
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{"imageType": "The image must be a PNG, JPEG, GIF or WebP file."},
			wantStage:  "validation",
		},
		{
			name: "every bad field is reported",
			mutate: func(in *CreateListingInput) {
				in.Title = "ab"
				in.Description = "short"
				in.Category = "cooking"
				in.Condition = "used"
				in.Image = nil
			},
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{
				"title":       "Title must be at least 3 characters.",
				"description": "Description must be at least 10 characters.",
				"category":    "Please select a category.",
				"condition":   "You need to select a condition.",
				"image":       "An image is required.",
			},
			wantStage: "validation",
		},
		{
			name:   "non-image file",
			mutate: func(in *CreateListingInput) { in.ImageContentType = "application/pdf" },
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{"imageType": "The image must be a PNG, JPEG, GIF or WebP file."},
			wantStage:  "validation",
		},
		{
			name:   "image too large",
			mutate: func(in *CreateListingInput) { in.ImageSize = 2 << 20 },
			setupMocks: func(*repoMocks.MockListingRepository, *storeMocks.MockStorage, *storeMocks.MockURLResolver) {
			},
			wantFields: map[string]string{"image": "The image must be 1.0 MiB or smaller."},
			wantStage:  "validation",
		},
		{
			name: "storage error",
			setupMocks: func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver) {
				mStore.On("Put", mock.Anything, wantKey, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErr:    ErrUpload,
			wantErrMsg: "upload to storage: storage fail",
			wantStage:  "upload",
		},
		{
			name: "url error removes the object",
			setupMocks: func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver) {
				mStore.On("Put", mock.Anything, wantKey, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: wantKey}, nil)
				mURL.On("URL", mock.Anything, wantKey).Return("", errors.New("presign fail"))
				mStore.On("Delete", mock.Anything, wantKey).Return(nil)
			},
			wantErr:    ErrUpload,
			wantErrMsg: "resolve image url: presign fail",
			wantStage:  "url",
		},
		{
			name: "repository error with successful rollback",
			setupMocks: func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver) {
				mStore.On("Put", mock.Anything, wantKey, mock.Anything, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mURL.On("URL", mock.Anything, wantKey).Return("https://cdn.example/x", nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", mock.Anything, wantKey).Return(nil)
			},
			wantErr:    ErrSave,
			wantErrMsg: "db save failed: db fail",
			wantStage:  "write",
		},
		{
			name: "repository error with failed rollback",
			setupMocks: func(mRepo *repoMocks.MockListingRepository, mStore *storeMocks.MockStorage, mURL *storeMocks.MockURLResolver) {
				mStore.On("Put", mock.Anything, wantKey, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: wantKey}, nil)
				mURL.On("URL", mock.Anything, wantKey).Return("https://cdn.example/x", nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", mock.Anything, wantKey).Return(errors.New("delete fail"))
			},
			wantErr:    ErrSave,
			wantErrMsg: "rollback delete failed: delete fail",
			wantStage:  "write",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockListingRepository)
			mStore := new(storeMocks.MockStorage)
			mURL := new(storeMocks.MockURLResolver)
			rec := &recorder{}
			svc := newListingService(mRepo, mStore, mURL, rec)
			tt.setupMocks(mRepo, mStore, mURL)

			in := validInput()
			if tt.mutate != nil {
				tt.mutate(&in)
			}

			listing, err := svc.Create(ctx, "owner-1", in)

			switch {
			case tt.wantFields != nil:
				var fields validation.FieldErrors
				require.True(t, errors.As(err, &fields), "got %v", err)
				assert.Equal(t, validation.FieldErrors(tt.wantFields), fields)
				assert.Nil(t, listing)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Nil(t, listing)
			default:
				require.NoError(t, err)
				assert.Equal(t, "gen-id", listing.ID)
				assert.Equal(t, []string{"dsa"}, rec.created)
			}

			if tt.wantStage != "" {
				assert.Equal(t, []string{tt.wantStage}, rec.failed)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
			mURL.AssertExpectations(t)
			if tt.wantFields != nil {
				mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestListingService_Create_OwnerRequired(t *testing.T) {
	mRepo := new(repoMocks.MockListingRepository)
	mStore := new(storeMocks.MockStorage)
	svc := newListingService(mRepo, mStore, new(storeMocks.MockURLResolver), &recorder{})

	_, err := svc.Create(context.Background(), "", validInput())

	assert.ErrorIs(t, err, ErrOwnerRequired)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_Create_StripsMarkup(t *testing.T) {
	mRepo := new(repoMocks.MockListingRepository)
	mStore := new(storeMocks.MockStorage)
	mURL := new(storeMocks.MockURLResolver)
	svc := newListingService(mRepo, mStore, mURL, &recorder{})

	mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	mURL.On("URL", mock.Anything, wantKey).Return("u", nil)
	mRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			l := args.Get(1).(*model.Listing)
			assert.Equal(t, "OS & DBMS Notes", l.Title)
			assert.Equal(t, "Handwritten, all units covered", l.Description)
		}).
		Return(&model.Listing{ID: "x"}, nil)

	in := validInput()
	in.Title = "<b>OS & DBMS Notes</b>"
	in.Description = "Handwritten, <script>alert(1)</script>all units covered"

	_, err := svc.Create(context.Background(), "owner-1", in)
	require.NoError(t, err)
}

func TestListingService_Feed(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	listings := []model.Listing{
		{ID: "1", Title: "Algorithms 101", Category: "dsa", CreatedAt: base},
		{ID: "2", Title: "OS Notes", Category: "os", CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "Advanced Algorithms", Category: "dsa", CreatedAt: base.Add(2 * time.Hour)},
	}

	tests := []struct {
		name    string
		query   catalog.Query
		srcErr  error
		wantIDs []string
		wantErr bool
	}{
		{name: "no filter newest first", wantIDs: []string{"3", "2", "1"}},
		{name: "category", query: catalog.Query{Category: "dsa"}, wantIDs: []string{"3", "1"}},
		{name: "search", query: catalog.Query{Search: "algo"}, wantIDs: []string{"3", "1"}},
		{name: "no match", query: catalog.Query{Search: "compiler"}, wantIDs: []string{}},
		{name: "source error", srcErr: errors.New("db fail"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockListingRepository)
			if tt.srcErr != nil {
				mRepo.On("All", ctx).Return(nil, tt.srcErr)
			} else {
				mRepo.On("All", ctx).Return(listings, nil)
			}
			svc := NewListingService(mRepo, mRepo, nil, nil, ListingOptions{})

			got, err := svc.Feed(ctx, tt.query)

			if tt.wantErr {
				assert.ErrorContains(t, err, "load catalog: db fail")
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestListingService_Create_MarkupOnlyTitleIsRejected(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	svc := newListingService(new(repoMocks.MockListingRepository), mStore, new(storeMocks.MockURLResolver), &recorder{})

	in := validInput()
	in.Title = "<b></b>"

	_, err := svc.Create(context.Background(), "owner-1", in)

	var fields validation.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Equal(t, "Title must be at least 3 characters.", fields["title"])
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
