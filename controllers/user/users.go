package userControllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/respond"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNoEmail = errors.New("token has no email claim")

type UpdateUserInput struct {
	Name      *string         `json:"name" binding:"omitempty,max=100"`
	Phone     *string         `json:"phone" binding:"omitempty,max=30"`
	AvatarURL *string         `json:"avatar_url" binding:"omitempty,url,max=500"`
	Address   *models.Address `json:"address"`
}

func (in UpdateUserInput) apply(u *models.User) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
}

// UserList is one page of profiles
type UserList struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// ensureProfile loads the caller's profile, creating it from the token claims the first time
func ensureProfile(db *gorm.DB, id auth.Identity) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id.ID).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return nil, errNoEmail
	}
	user = models.User{ID: id.ID, Email: email}
	// concurrent first calls race on the insert; the loser reads the winner's row
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return nil, err
	}
	if err := db.First(&user, "id = ?", id.ID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func currentProfile(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	id, ok := auth.CurrentIdentity(c)
	if !ok || id.IsGuest() {
		respond.Error(c, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	user, err := ensureProfile(db, id)
	if err != nil {
		if errors.Is(err, errNoEmail) {
			respond.Error(c, http.StatusUnauthorized, err.Error())
		} else {
			respond.Internal(c, err, "Failed to load profile")
		}
		return nil, false
	}
	return user, true
}

// GET /user
func GetUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentProfile(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /admin/users
func GetAllUsers(db *gorm.DB, pageSize int) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := respond.Pagination(c, pageSize)
		if !ok {
			return
		}

		list := UserList{Users: []models.User{}, Page: page.Number}
		if err := db.Model(&models.User{}).Count(&list.Total).Error; err != nil {
			respond.Internal(c, err, "Failed to fetch users")
			return
		}
		err := db.Order("created_at DESC, id ASC").
			Limit(page.Limit).Offset(page.Offset()).
			Find(&list.Users).Error
		if err != nil {
			respond.Internal(c, err, "Failed to fetch users")
			return
		}
		list.TotalPages = page.TotalPages(list.Total)
		c.JSON(http.StatusOK, list)
	}
}

// PUT /user
func UpdateUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input UpdateUserInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respond.BadRequest(c, err)
			return
		}

		user, ok := currentProfile(c, db)
		if !ok {
			return
		}

		input.apply(user)
		if err := db.Save(user).Error; err != nil {
			respond.Internal(c, err, "Failed to update user")
			return
		}

		c.JSON(http.StatusOK, user)
	}
}
