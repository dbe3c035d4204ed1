package signup

import (
	"encoding/json"
	"errors"
	"html/template"
	"mime"
	"net/http"

	"github.com/fintrack/fintrack/internal/rest"
	log "github.com/sirupsen/logrus"
)

var pageTemplate = template.Must(template.New("signup").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Sign up</title></head>
<body>
{{if .Created}}
<p>Account for {{.Email}} created. Check your inbox to confirm the address.</p>
{{else}}
<form method="post" action="/signup">
{{if .Error}}<p role="alert">{{.Error}}</p>{{end}}
<label>Email <input type="email" name="email" value="{{.Email}}" required></label>
<label>Name <input type="text" name="displayName" value="{{.DisplayName}}"></label>
<label>Password <input type="password" name="password" minlength="6" required></label>
<button type="submit">Sign up</button>
</form>
{{end}}
</body>
</html>
`))

type pageData struct {
	Email       string
	DisplayName string
	Error       string
	Created     bool
}

type RequestDTO struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type ResponseDTO struct {
	Uid         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Form godoc
// @Summary Sign up form
// @Tags Signup
// @Produce html
// @Success 200 {string} string
// @Router /signup [get]
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, pageData{})
}

// SignUp godoc
// @Summary Create an account and an empty financial profile
// @Tags Signup
// @Accept x-www-form-urlencoded,json
// @Produce html,json
// @Param request body RequestDTO true "Sign up data"
// @Success 201 {object} ResponseDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 409 {object} rest.ErrorResponse
// @Router /signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	log.Debug("Handling sign up")
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	asJson := mediaType == "application/json"

	var req Request
	if asJson {
		var dto RequestDTO
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
			return
		}
		req = Request{Email: dto.Email, Password: dto.Password, DisplayName: dto.DisplayName}
	} else {
		if err := r.ParseForm(); err != nil {
			render(w, http.StatusBadRequest, pageData{Error: "Invalid form"})
			return
		}
		req = Request{
			Email:       r.PostForm.Get("email"),
			Password:    r.PostForm.Get("password"),
			DisplayName: r.PostForm.Get("displayName"),
		}
	}

	created, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		status, message := errorStatus(err)
		if asJson {
			rest.WriteError(w, status, message, err.Error())
		} else {
			render(w, status, pageData{Email: req.Email, DisplayName: req.DisplayName, Error: err.Error()})
		}
		return
	}

	if asJson {
		w.Header().Set("Content-Type", "application/json")
		rest.WriteJSON(w, http.StatusCreated, ResponseDTO{
			Uid:         created.Uid,
			Email:       created.Email,
			DisplayName: created.DisplayName,
		})
		return
	}
	render(w, http.StatusCreated, pageData{Email: created.Email, Created: true})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidSignup):
		return http.StatusBadRequest, "Invalid sign up data"
	case errors.Is(err, ErrRejected):
		return http.StatusConflict, "Sign up rejected"
	default:
		log.Errorf("sign up failed: %v", err)
		return http.StatusBadGateway, "Sign up failed"
	}
}

func render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Errorf("failed to render sign up page: %v", err)
	}
}
