package controllers

import (
	"errors"

	"facturation-backend/apperrors"
	"facturation-backend/database"
	"facturation-backend/middlewares"
	"facturation-backend/models"
	"facturation-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type registerInput struct {
	CompanyName string `json:"company_name" validate:"required"`
	Siret       string `json:"siret"`
	VatNumber   string `json:"vat_number"`
	Address     string `json:"address"`
	Zip         string `json:"zip"`
	City        string `json:"city"`
	Country     string `json:"country"`

	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates the tenant and its first admin user in one
// transaction.
func Register(c *fiber.Ctx) error {
	var input registerInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)

	var user models.User
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		tenant := models.Tenant{
			Id:          uuid.NewString(),
			CompanyName: input.CompanyName,
			Siret:       input.Siret,
			VatNumber:   input.VatNumber,
			Address:     input.Address,
			Zip:         input.Zip,
			City:        input.City,
			Country:     input.Country,
			Email:       input.Email,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return apperrors.Wrap(apperrors.Validation, "societe deja enregistree", err)
		}

		user = models.User{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     input.Email,
			TenantID:  tenant.Id,
			Role:      models.RoleAdmin,
		}
		user.SetPassword(input.Password)
		if err := tx.Create(&user).Error; err != nil {
			return apperrors.Wrap(apperrors.Validation, "email deja utilise", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var input loginInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "identifiants invalides")
		}
		return apperrors.Wrap(apperrors.Internal, "connexion impossible", err)
	}
	if err := user.ComparePassword(input.Password); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "identifiants invalides")
	}

	token, err := middlewares.GenerateJWT(user.Id, user.TenantID, user.Role)
	if err != nil {
		return apperrors.Wrap(apperrors.Internal, "generation du jeton impossible", err)
	}
	return c.JSON(fiber.Map{"token": token, "user": user})
}
