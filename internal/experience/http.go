package experience

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/triplog/triplog/internal/auth"
	"github.com/triplog/triplog/internal/model"
)

const localsExperienceKey = "currentExperience"

// Controller exposes the experience feature over HTTP.
type Controller struct {
	service *Service
	gate    *auth.Gate
	logger  *logrus.Logger
}

// NewController builds the experience controller.
func NewController(service *Service, gate *auth.Gate, logger *logrus.Logger) *Controller {
	return &Controller{service: service, gate: gate, logger: logger}
}

// RegisterRoutes mounts the experience routes on the given router. Reads are
// public; creation requires a verified account; mutation requires ownership.
func (e *Controller) RegisterRoutes(r fiber.Router) {
	r.Post("/create", e.gate.Protected(), e.gate.RequireVerified(), e.Create)
	r.Get("/get", e.List)
	r.Get("/get/:id", e.Get)
	r.Patch("/update/:id", e.gate.Protected(), e.RequireOwner(), e.Update)
	r.Delete("/delete/:id", e.gate.Protected(), e.RequireOwner(), e.Delete)
	r.Get("/search/:destination", e.Search)
}

// RequireOwner loads the experience from the path id and rejects requests
// from accounts other than its owner. Layer after the base gate.
func (e *Controller) RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
		}

		exp, err := e.service.FindByID(c.Context(), id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
			}
			return err
		}

		user := auth.CurrentUser(c)
		if user == nil || !exp.OwnedBy(user.ID) {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized to modify this experience")
		}

		c.Locals(localsExperienceKey, exp)
		return c.Next()
	}
}

func currentExperience(c *fiber.Ctx) *model.Experience {
	exp, _ := c.Locals(localsExperienceKey).(*model.Experience)
	return exp
}

// DayDetailPayload mirrors one itinerary day in a create request.
type DayDetailPayload struct {
	Day           int     `json:"day"`
	Description   string  `json:"description"`
	Cost          float64 `json:"cost"`
	DriverContact string  `json:"driverContact"`
}

// Validate will validate the payload
func (d DayDetailPayload) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Day, validation.Required, validation.Min(1)),
		validation.Field(&d.Description, validation.Required),
		validation.Field(&d.Cost, validation.Required, validation.Min(0.0)),
	)
}

// CreatePayload is the create request body.
type CreatePayload struct {
	Destination   string             `json:"destination"`
	ItineraryDays int                `json:"itineraryDays"`
	PlacesCovered []string           `json:"placesCovered"`
	Details       []DayDetailPayload `json:"details"`
	TotalCost     float64            `json:"totalCost"`
	DriverContact string             `json:"driverContact"`
	Suggestions   []string           `json:"suggestions"`
}

// Validate will validate the payload
func (p CreatePayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Destination, validation.Required),
		validation.Field(&p.ItineraryDays, validation.Required, validation.Min(1)),
		validation.Field(&p.PlacesCovered, validation.Required, validation.Length(1, 0)),
		validation.Field(&p.Details, validation.Required, validation.Length(1, 0)),
		validation.Field(&p.TotalCost, validation.Required, validation.Min(0.0)),
	)
	if err != nil {
		return err
	}

	for _, detail := range p.Details {
		if err := detail.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest,
				"Each detail must include day, description, and cost.")
		}
	}
	return nil
}

func (p CreatePayload) toModel() *model.Experience {
	details := make([]model.DayDetail, 0, len(p.Details))
	for _, d := range p.Details {
		details = append(details, model.DayDetail{
			Day:           d.Day,
			Description:   d.Description,
			Cost:          d.Cost,
			DriverContact: d.DriverContact,
		})
	}

	suggestions := p.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}

	return &model.Experience{
		Destination:   p.Destination,
		ItineraryDays: p.ItineraryDays,
		PlacesCovered: p.PlacesCovered,
		Details:       details,
		TotalCost:     p.TotalCost,
		DriverContact: p.DriverContact,
		Suggestions:   suggestions,
	}
}

// Create handles POST /create.
func (e *Controller) Create(c *fiber.Ctx) error {
	payload := new(CreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Please provide all required fields")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	exp, err := e.service.Create(c.Context(), auth.CurrentUser(c), payload.toModel())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Experience shared successfully",
		"experience": exp,
	})
}

// List handles GET /get.
func (e *Controller) List(c *fiber.Ctx) error {
	views, err := e.service.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(views)
}

// Get handles GET /get/:id.
func (e *Controller) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
	}

	view, err := e.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
		}
		return err
	}
	return c.JSON(view)
}

// UpdatePayload is the partial update body. Absent fields stay untouched.
type UpdatePayload struct {
	Destination   *string             `json:"destination"`
	ItineraryDays *int                `json:"itineraryDays"`
	PlacesCovered *[]string           `json:"placesCovered"`
	Details       *[]DayDetailPayload `json:"details"`
	TotalCost     *float64            `json:"totalCost"`
	DriverContact *string             `json:"driverContact"`
	Suggestions   *[]string           `json:"suggestions"`
}

// Validate will validate the payload. Absent fields pass; present fields
// must satisfy the same constraints the create path enforces.
func (p UpdatePayload) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Destination, validation.NilOrNotEmpty),
		validation.Field(&p.ItineraryDays, validation.NilOrNotEmpty, validation.Min(1)),
		validation.Field(&p.PlacesCovered, validation.NilOrNotEmpty),
		validation.Field(&p.Details, validation.NilOrNotEmpty),
		validation.Field(&p.TotalCost, validation.NilOrNotEmpty, validation.Min(0.0)),
	)
	if err != nil {
		return err
	}

	if p.Details != nil {
		for _, detail := range *p.Details {
			if err := detail.Validate(); err != nil {
				return fiber.NewError(fiber.StatusBadRequest,
					"Each detail must include day, description, and cost.")
			}
		}
	}
	return nil
}

func (p UpdatePayload) fields() bson.M {
	fields := bson.M{}
	if p.Destination != nil {
		fields["destination"] = *p.Destination
	}
	if p.ItineraryDays != nil {
		fields["itineraryDays"] = *p.ItineraryDays
	}
	if p.PlacesCovered != nil {
		fields["placesCovered"] = *p.PlacesCovered
	}
	if p.Details != nil {
		details := make([]model.DayDetail, 0, len(*p.Details))
		for _, d := range *p.Details {
			details = append(details, model.DayDetail{
				Day:           d.Day,
				Description:   d.Description,
				Cost:          d.Cost,
				DriverContact: d.DriverContact,
			})
		}
		fields["details"] = details
	}
	if p.TotalCost != nil {
		fields["totalCost"] = *p.TotalCost
	}
	if p.DriverContact != nil {
		fields["driverContact"] = *p.DriverContact
	}
	if p.Suggestions != nil {
		fields["suggestions"] = *p.Suggestions
	}
	return fields
}

// Update handles PATCH /update/:id. RequireOwner already resolved the
// record.
func (e *Controller) Update(c *fiber.Ctx) error {
	payload := new(UpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	fields := payload.fields()
	exp := currentExperience(c)
	if len(fields) == 0 {
		return c.JSON(exp)
	}

	updated, err := e.service.Update(c.Context(), exp.ID, fields)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
		}
		return err
	}
	return c.JSON(updated)
}

// Delete handles DELETE /delete/:id.
func (e *Controller) Delete(c *fiber.Ctx) error {
	exp := currentExperience(c)
	if err := e.service.Delete(c.Context(), exp.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "Experience deleted successfully"})
}

// Search handles GET /search/:destination. An empty result set is a 404,
// matching the consumer's expectations.
func (e *Controller) Search(c *fiber.Ctx) error {
	views, err := e.service.Search(c.Context(), c.Params("destination"))
	if err != nil {
		return err
	}
	if len(views) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "No experiences found for this destination")
	}
	return c.JSON(views)
}
