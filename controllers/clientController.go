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

// Clients are plain registry rows: no lifecycle, no numbering, no
// delegation to the engine. Both execution modes hit the database.

type createClientInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	Country     string `json:"country"`
}

type updateClientInput struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	CompanyName *string `json:"company_name"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Zip         *string `json:"zip"`
	Country     *string `json:"country"`
}

func findClient(tenant, id string) (*models.Client, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.New(apperrors.Validation, "identifiant invalide")
	}
	var client models.Client
	err := database.DB.Where("tenant_id = ? AND id = ?", tenant, id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "client non trouve")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "lecture du client impossible", err)
	}
	return &client, nil
}

func ListClients(c *fiber.Ctx) error {
	tenant := tenantID(c)
	page, limit, offset := paginationParams(c)

	q := database.DB.Model(&models.Client{}).Where("tenant_id = ? AND active = ?", tenant, true)
	if search := c.Query("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("company_name LIKE ? OR last_name LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des clients impossible", err)
	}

	var clients []models.Client
	if err := q.Order("company_name ASC, last_name ASC").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "liste des clients impossible", err)
	}

	return c.JSON(fiber.Map{
		"clients":     clients,
		"count":       len(clients),
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func GetClient(c *fiber.Ctx) error {
	client, err := findClient(tenantID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(client)
}

func CreateClient(c *fiber.Ctx) error {
	if err := requireWriteAccess(c); err != nil {
		return err
	}
	var input createClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizeDTO(&input)
	if input.CompanyName == "" && input.LastName == "" {
		return apperrors.New(apperrors.Validation, "company_name ou last_name requis")
	}

	client := models.Client{
		Id:          uuid.NewString(),
		TenantID:    tenantID(c),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		CompanyName: input.CompanyName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Address:     input.Address,
		City:        input.City,
		Zip:         input.Zip,
		Country:     input.Country,
		Active:      true,
	}
	if err := database.DB.Create(&client).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "creation du client impossible", err)
	}
	return c.Status(fiber.StatusCreated).JSON(client)
}

func UpdateClient(c *fiber.Ctx) error {
	if err := requireWriteAccess(c); err != nil {
		return err
	}
	var input updateClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&input)

	client, err := findClient(tenantID(c), c.Params("id"))
	if err != nil {
		return err
	}

	changes := utils.UpdatesFromPtrDTO(&input, nil)
	if len(changes) > 0 {
		if err := database.DB.Model(client).Updates(changes).Error; err != nil {
			return apperrors.Wrap(apperrors.Internal, "mise a jour du client impossible", err)
		}
	}
	return c.JSON(client)
}

// DeleteClient deactivates the row. Documents keep their reference, so
// history never dangles.
func DeleteClient(c *fiber.Ctx) error {
	if err := requireWriteAccess(c); err != nil {
		return err
	}
	client, err := findClient(tenantID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if err := database.DB.Model(client).Update("active", false).Error; err != nil {
		return apperrors.Wrap(apperrors.Internal, "suppression du client impossible", err)
	}
	return c.JSON(fiber.Map{"message": "client supprime"})
}
