package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/point-forecast/internal/forecast"
	"github.com/i474232898/point-forecast/internal/geocode"
)

var validate = validator.New()

// Options are the collaborators behind the HTTP API.
type Options struct {
	// Deps are shared by every facade created per request, so the rate
	// limiter and payload store span all callers.
	Deps forecast.Deps
	// Resolver handles city/country queries. Nil disables them.
	Resolver geocode.Resolver
	// Registry is exposed on /metrics when set.
	Registry *prometheus.Registry
	// Stats adds counters to /health.
	Stats func() map[string]int
}

// ErrorHandler renders every error as the JSON envelope used by the API.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, opts Options) {
	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status":  "ok",
			"service": "point-forecast",
		}
		if opts.Stats != nil {
			body["stats"] = opts.Stats()
		}
		return c.JSON(body)
	})

	if opts.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/forecast/:class", func(c *fiber.Ctx) error {
		class := c.Params("class")
		if err := validate.Var(class, "oneof=daily twice-daily hourly"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "class must be one of daily, twice-daily, hourly")
		}

		coord, err := resolvePoint(c, opts.Resolver)
		if err != nil {
			return err
		}

		pf, err := forecast.NewPointForecast(coord.Lon, coord.Lat, opts.Deps)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		records, err := pf.Forecast(c.UserContext(), forecast.Class(class))
		if err != nil {
			return forecastFailure(err)
		}

		return c.JSON(forecastResponse[forecast.Record]{
			Family:     forecast.FamilyPoint,
			Class:      forecast.Class(class),
			Coordinate: pf.Coordinate(),
			Records:    records,
		})
	})

	v1.Get("/fire/:class", func(c *fiber.Ctx) error {
		class := c.Params("class")
		if err := validate.Var(class, "oneof=daily hourly"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "class must be one of daily, hourly")
		}

		coord, err := resolvePoint(c, opts.Resolver)
		if err != nil {
			return err
		}

		ff, err := forecast.NewFirePointForecast(coord.Lon, coord.Lat, opts.Deps)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		records, err := ff.Forecast(c.UserContext(), forecast.Class(class))
		if err != nil {
			return forecastFailure(err)
		}

		return c.JSON(forecastResponse[forecast.FireRecord]{
			Family:     forecast.FamilyFire,
			Class:      forecast.Class(class),
			Coordinate: ff.Coordinate(),
			Records:    records,
		})
	})
}

type forecastResponse[T any] struct {
	Family     forecast.Family     `json:"family"`
	Class      forecast.Class      `json:"class"`
	Coordinate forecast.Coordinate `json:"coordinate"`
	Records    []T                 `json:"records"`
}

// coordinateQuery identifies a point directly.
type coordinateQuery struct {
	Lon string `validate:"required,longitude"`
	Lat string `validate:"required,latitude"`
}

// locationQuery identifies a point by address.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

// resolvePoint reads lon/lat, falling back to city/country through the
// geocoder. Errors are *fiber.Error values ready to return.
func resolvePoint(c *fiber.Ctx, resolver geocode.Resolver) (forecast.Coordinate, error) {
	if c.Query("lon") != "" || c.Query("lat") != "" {
		q := coordinateQuery{Lon: c.Query("lon"), Lat: c.Query("lat")}
		if err := validate.Struct(q); err != nil {
			return forecast.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return forecast.Coordinate{Lon: q.Lon, Lat: q.Lat}, nil
	}

	q := locationQuery{City: c.Query("city"), Country: c.Query("country")}
	if q.City == "" && q.Country == "" {
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, "lon and lat, or city and country, are required")
	}
	if err := validate.Struct(q); err != nil {
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if resolver == nil {
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusNotImplemented, geocode.ErrNotConfigured.Error())
	}

	lon, lat, err := resolver.Resolve(c.UserContext(), q.City, q.Country)
	switch {
	case errors.Is(err, geocode.ErrNotConfigured):
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusNotImplemented, err.Error())
	case errors.Is(err, geocode.ErrNotFound):
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusNotFound, err.Error())
	case err != nil:
		return forecast.Coordinate{}, fiber.NewError(fiber.StatusBadGateway, "failed to resolve location")
	}
	return forecast.Coordinate{
		Lon: strconv.FormatFloat(lon, 'f', -1, 64),
		Lat: strconv.FormatFloat(lat, 'f', -1, 64),
	}, nil
}

// forecastFailure maps facade errors to HTTP errors. Upstream failures and
// unusable payloads are both the provider's fault.
func forecastFailure(err error) error {
	var forecastErr *forecast.ForecastError
	if errors.As(err, &forecastErr) {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
