package handlers

import (
	"net/http"

	domain "github.com/tailor-field/configurator/internal/domain"
	"github.com/tailor-field/configurator/internal/services"
)

type sessionResponse struct {
	Session sessionPayload `json:"session"`
}

type sessionPayload struct {
	ID                      string             `json:"id"`
	Product                 productPayload     `json:"product"`
	ViewerModel             string             `json:"viewer_model"`
	State                   string             `json:"state"`
	Error                   string             `json:"error,omitempty"`
	Steps                   []stepPayload      `json:"steps"`
	Selections              []selectionPayload `json:"selections"`
	Measurement             measurementPayload `json:"measurement"`
	Navigation              navigationPayload  `json:"navigation"`
	TotalPrice              int64              `json:"total_price"`
	Completion              completionPayload  `json:"completion"`
	CompletedCustomizations int                `json:"completed_customizations"`
	Attributes              map[string]string  `json:"attributes"`
	Layers                  layersPayload      `json:"layers"`
	Summary                 *summaryPayload    `json:"summary,omitempty"`
	ExpiresAt               string             `json:"expires_at,omitempty"`
}

type productPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	BasePrice   int64  `json:"base_price"`
	Currency    string `json:"currency"`
	ProductType string `json:"product_type,omitempty"`
}

type stepPayload struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Category string          `json:"category"`
	Options  []optionPayload `json:"options"`
}

type optionPayload struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Value     string         `json:"value"`
	Price     int64          `json:"price"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Color     string         `json:"color,omitempty"`
	Layers    *layersPayload `json:"layers,omitempty"`
}

type selectionPayload struct {
	StepID   string         `json:"step_id"`
	OptionID string         `json:"option_id"`
	Value    string         `json:"value"`
	Price    int64          `json:"price"`
	Color    string         `json:"color,omitempty"`
	Layers   *layersPayload `json:"layers,omitempty"`
}

type layersPayload struct {
	Show []string `json:"show"`
	Hide []string `json:"hide"`
}

type measurementPayload struct {
	SizeType     string             `json:"size_type"`
	StandardSize string             `json:"standard_size,omitempty"`
	FitType      string             `json:"fit_type,omitempty"`
	Custom       map[string]float64 `json:"custom_measurements,omitempty"`
}

type navigationPayload struct {
	Index             int    `json:"index"`
	TotalSteps        int    `json:"total_steps"`
	Label             string `json:"label"`
	CompletedLabel    string `json:"completed_label"`
	Title             string `json:"title"`
	AtMeasurementStep bool   `json:"at_measurement_step"`
	StepReady         []bool `json:"step_ready"`
}

type completionPayload struct {
	Completed  int `json:"completed"`
	TotalSteps int `json:"total_steps"`
	Percent    int `json:"percent"`
}

type summaryPayload struct {
	ProductName    string                 `json:"product_name"`
	BasePrice      int64                  `json:"base_price"`
	Currency       string                 `json:"currency"`
	Customizations []customizationPayload `json:"customizations"`
	Measurement    measurementPayload     `json:"measurement"`
	TotalPrice     int64                  `json:"total_price"`
}

type customizationPayload struct {
	Category string `json:"category"`
	Value    string `json:"value"`
	Price    int64  `json:"price"`
}

type submissionResponse struct {
	SubmissionID string         `json:"submission_id"`
	SessionID    string         `json:"session_id"`
	ProductID    string         `json:"product_id"`
	MessageID    string         `json:"message_id,omitempty"`
	Summary      summaryPayload `json:"summary"`
	SubmittedAt  string         `json:"submitted_at"`
}

type productsResponse struct {
	Products      []productPayload `json:"products"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

type productStepsResponse struct {
	Product     productPayload `json:"product"`
	ViewerModel string         `json:"viewer_model"`
	Steps       []stepPayload  `json:"steps"`
}

type sizingResponse struct {
	StandardSizes []domain.StandardSize `json:"standard_sizes"`
	FitTypes      []domain.FitType      `json:"fit_types"`
}

func writeSessionResponse(w http.ResponseWriter, status int, view services.SessionView) {
	writeJSONResponse(w, status, sessionResponse{Session: buildSessionPayload(view)})
}

func buildSessionPayload(view services.SessionView) sessionPayload {
	selections := make([]selectionPayload, 0, len(view.Selections))
	for _, sel := range view.Selections {
		selections = append(selections, selectionPayload{
			StepID:   sel.StepID,
			OptionID: sel.OptionID,
			Value:    sel.Value,
			Price:    sel.Price,
			Color:    sel.Color,
			Layers:   buildLayersPointer(sel.Layers),
		})
	}

	attrs := view.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}

	payload := sessionPayload{
		ID:          view.SessionID,
		Product:     buildProductPayload(view.Product),
		ViewerModel: view.ViewerModel,
		State:       string(view.State),
		Error:       view.Error,
		Steps:       buildStepPayloads(view.Steps),
		Selections:  selections,
		Measurement: buildMeasurementPayload(view.Measurement),
		Navigation: navigationPayload{
			Index:             view.Navigation.Index,
			TotalSteps:        view.Navigation.TotalSteps,
			Label:             view.Navigation.Label,
			CompletedLabel:    view.Navigation.CompletedLabel,
			Title:             view.Navigation.Title,
			AtMeasurementStep: view.Navigation.AtMeasurementStep,
			StepReady:         append([]bool(nil), view.Navigation.StepReady...),
		},
		TotalPrice: view.TotalPrice,
		Completion: completionPayload{
			Completed:  view.Completion.Completed,
			TotalSteps: view.Completion.TotalSteps,
			Percent:    view.Completion.Percent,
		},
		CompletedCustomizations: view.CompletedCustomizations,
		Attributes:              attrs,
		Layers:                  buildLayersPayload(view.Layers),
		ExpiresAt:               formatTime(view.ExpiresAt),
	}
	if view.Summary != nil {
		summary := buildSummaryPayload(*view.Summary)
		payload.Summary = &summary
	}
	return payload
}

func buildProductPayload(product services.ProductInfo) productPayload {
	return productPayload{
		ID:          product.ID,
		Name:        product.Name,
		BasePrice:   product.BasePrice,
		Currency:    product.Currency,
		ProductType: product.ProductType,
	}
}

func buildStepPayloads(steps []services.CustomizationStep) []stepPayload {
	out := make([]stepPayload, 0, len(steps))
	for _, step := range steps {
		options := make([]optionPayload, 0, len(step.Options))
		for _, opt := range step.Options {
			options = append(options, optionPayload{
				ID:        opt.ID,
				Name:      opt.Name,
				Value:     opt.Value,
				Price:     opt.Price,
				Thumbnail: opt.Thumbnail,
				Color:     opt.Color,
				Layers:    buildLayersPointer(opt.Layers),
			})
		}
		out = append(out, stepPayload{
			ID:       step.ID,
			Name:     step.Name,
			Kind:     string(step.Kind),
			Category: step.Category,
			Options:  options,
		})
	}
	return out
}

func buildMeasurementPayload(profile services.MeasurementProfile) measurementPayload {
	payload := measurementPayload{
		SizeType:     string(profile.SizeType),
		StandardSize: profile.StandardSize,
		FitType:      profile.FitType,
	}
	if profile.Custom != nil {
		payload.Custom = make(map[string]float64, len(domain.MeasurementFields))
		for _, field := range domain.MeasurementFields {
			value, _ := profile.Custom.Get(field)
			payload.Custom[string(field)] = value
		}
	}
	return payload
}

func buildSummaryPayload(summary services.OrderSummary) summaryPayload {
	customizations := make([]customizationPayload, 0, len(summary.Customizations))
	for _, c := range summary.Customizations {
		customizations = append(customizations, customizationPayload{
			Category: c.Category,
			Value:    c.Value,
			Price:    c.Price,
		})
	}
	return summaryPayload{
		ProductName:    summary.ProductName,
		BasePrice:      summary.BasePrice,
		Currency:       summary.Currency,
		Customizations: customizations,
		Measurement:    buildMeasurementPayload(summary.Measurement),
		TotalPrice:     summary.TotalPrice,
	}
}

func buildLayersPayload(layers domain.LayerDirectives) layersPayload {
	payload := layersPayload{Show: layers.Show, Hide: layers.Hide}
	if payload.Show == nil {
		payload.Show = []string{}
	}
	if payload.Hide == nil {
		payload.Hide = []string{}
	}
	return payload
}

func buildLayersPointer(layers *domain.LayerDirectives) *layersPayload {
	if layers == nil {
		return nil
	}
	payload := buildLayersPayload(*layers)
	return &payload
}
