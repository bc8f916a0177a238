package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rjmoggach/litigation-support-sub001/internal/apiclient"
	"github.com/rjmoggach/litigation-support-sub001/internal/dedupe"
	"github.com/rjmoggach/litigation-support-sub001/internal/errclass"
	"github.com/rjmoggach/litigation-support-sub001/internal/retry"
)

const (
	defaultPageSize = 50

	resourceCallTimeout = 15 * time.Second
)

// galleriesRetryPolicy retries transient backend failures on the galleries
// list, with a longer pause when the backend is rate limiting.
var galleriesRetryPolicy = retry.Policy{
	MaxAttempts:      3,
	InitialBackoff:   500 * time.Millisecond,
	MaxBackoff:       5 * time.Second,
	RateLimitBackoff: 2 * time.Second,
}

func (s *Server) handleDashboard(c echo.Context) error {
	sess := currentSession(c)
	return s.render(c, "dashboard.html", map[string]any{
		"EmailAccounts": sess.EmailAccounts,
	})
}

// --- People ---

func (s *Server) handlePeopleList(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	people, err := s.api.ListPeople(ctx, sessionToken(c), listOptions(c))
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "people.html", map[string]any{
		"People": people,
		"Skip":   listOptions(c).Skip,
	})
}

func (s *Server) handlePersonCreate(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.PersonInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Title:     c.FormValue("title"),
		CompanyID: optionalID(c.FormValue("company_id")),
	}
	if _, err := s.api.CreatePerson(ctx, sessionToken(c), input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/people")
}

func (s *Server) handlePersonUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.PersonInput{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
		Phone:     c.FormValue("phone"),
		Title:     c.FormValue("title"),
		CompanyID: optionalID(c.FormValue("company_id")),
	}
	if _, err := s.api.UpdatePerson(ctx, sessionToken(c), id, input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/people")
}

func (s *Server) handlePersonDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeletePerson(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/people")
}

// --- Companies ---

func (s *Server) handleCompaniesList(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	companies, err := s.api.ListCompanies(ctx, sessionToken(c), listOptions(c))
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "companies.html", map[string]any{
		"Companies": companies,
		"Skip":      listOptions(c).Skip,
	})
}

func (s *Server) handleCompanyCreate(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.CompanyInput{
		Name:    c.FormValue("name"),
		Website: c.FormValue("website"),
		Email:   c.FormValue("email"),
		Phone:   c.FormValue("phone"),
	}
	if _, err := s.api.CreateCompany(ctx, sessionToken(c), input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/companies")
}

func (s *Server) handleCompanyUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.CompanyInput{
		Name:    c.FormValue("name"),
		Website: c.FormValue("website"),
		Email:   c.FormValue("email"),
		Phone:   c.FormValue("phone"),
	}
	if _, err := s.api.UpdateCompany(ctx, sessionToken(c), id, input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/companies")
}

func (s *Server) handleCompanyDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeleteCompany(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/companies")
}

// --- Galleries ---

// handleGalleriesList fetches through the dedupe cache: double-submits and
// concurrent tabs hitting the same page share a single backend call.
func (s *Server) handleGalleriesList(c echo.Context) error {
	sess := currentSession(c)
	opts := listOptions(c)
	key := galleriesKey(sess.User.ID, opts.Skip)

	ctx, cancel := s.resourceContext(c)
	defer cancel()

	token := sessionToken(c)
	result, _, err := s.galleries.Do(key, func() (any, error) {
		return retry.Do(ctx, galleriesRetryPolicy, classifyForRetry, func() ([]apiclient.Gallery, error) {
			return s.api.ListGalleries(ctx, token, opts)
		})
	})

	var galleries []apiclient.Gallery
	if err != nil {
		s.flashError(c, err)
	} else {
		galleries, _ = result.([]apiclient.Gallery)
	}
	return s.render(c, "galleries.html", map[string]any{
		"Galleries": galleries,
		"Skip":      opts.Skip,
	})
}

func (s *Server) handleGalleryCreate(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.GalleryInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Published:   c.FormValue("published") == "on",
	}
	if _, err := s.api.CreateGallery(ctx, sessionToken(c), input); err != nil {
		s.flashError(c, err)
	}
	s.forgetGalleries(c)
	return c.Redirect(302, "/galleries")
}

func (s *Server) handleGalleryDetail(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	token := sessionToken(c)
	gallery, err := s.api.GetGallery(ctx, token, id)
	if err != nil {
		s.flashError(c, err)
		return c.Redirect(302, "/galleries")
	}
	images, err := s.api.ListImages(ctx, token, id)
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "gallery_detail.html", map[string]any{
		"Gallery": gallery,
		"Images":  images,
	})
}

func (s *Server) handleGalleryDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeleteGallery(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	s.forgetGalleries(c)
	return c.Redirect(302, "/galleries")
}

func (s *Server) handleImageDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeleteImage(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	s.forgetGalleries(c)

	if ref := c.FormValue("gallery_id"); ref != "" {
		return c.Redirect(302, "/galleries/"+ref)
	}
	return c.Redirect(302, "/galleries")
}

// forgetGalleries drops the caller's cached gallery pages after a mutation so
// the next list shows fresh data.
func (s *Server) forgetGalleries(c echo.Context) {
	sess := currentSession(c)
	// Mutations land on page one in practice; dropping the first pages covers
	// the visible window.
	for skip := 0; skip <= defaultPageSize*2; skip += defaultPageSize {
		s.galleries.Forget(galleriesKey(sess.User.ID, skip))
	}
}

func galleriesKey(userID int64, skip int) string {
	return dedupe.Key("galleries", strconv.FormatInt(userID, 10), strconv.Itoa(skip))
}

// --- Pages ---

func (s *Server) handlePagesList(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	pages, err := s.api.ListPages(ctx, sessionToken(c), listOptions(c))
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "pages.html", map[string]any{
		"Pages": pages,
		"Skip":  listOptions(c).Skip,
	})
}

func (s *Server) handlePageCreate(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.PageInput{
		Title:     c.FormValue("title"),
		Body:      c.FormValue("body"),
		Published: c.FormValue("published") == "on",
	}
	if _, err := s.api.CreatePage(ctx, sessionToken(c), input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/pages")
}

func (s *Server) handlePageUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	input := apiclient.PageInput{
		Title:     c.FormValue("title"),
		Body:      c.FormValue("body"),
		Published: c.FormValue("published") == "on",
	}
	if _, err := s.api.UpdatePage(ctx, sessionToken(c), id, input); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/pages")
}

func (s *Server) handlePageDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeletePage(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/pages")
}

// --- Admin: users ---

func (s *Server) handleUsersList(c echo.Context) error {
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	users, err := s.api.ListUsers(ctx, sessionToken(c), listOptions(c))
	if err != nil {
		s.flashError(c, err)
	}
	return s.render(c, "users.html", map[string]any{
		"Users": users,
		"Skip":  listOptions(c).Skip,
	})
}

func (s *Server) handleUserUpdate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	ctx, cancel := s.resourceContext(c)
	defer cancel()

	update := apiclient.UserUpdate{}
	if v := c.FormValue("full_name"); v != "" {
		update.FullName = &v
	}
	if v := c.FormValue("is_active"); v != "" {
		active := v == "true" || v == "on"
		update.IsActive = &active
	}
	if v := c.FormValue("is_superuser"); v != "" {
		super := v == "true" || v == "on"
		update.IsSuperuser = &super
	}
	if form, err := c.FormParams(); err == nil {
		if roles, ok := form["roles"]; ok {
			update.Roles = roles
		}
	}
	if _, err := s.api.UpdateUser(ctx, sessionToken(c), id, update); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/admin/users")
}

func (s *Server) handleUserDelete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.String(400, "Invalid id")
	}
	sess := currentSession(c)
	if sess.User.ID == id {
		s.flashError(c, fmt.Errorf("cannot delete your own account"))
		return c.Redirect(302, "/admin/users")
	}

	ctx, cancel := s.resourceContext(c)
	defer cancel()

	if err := s.api.DeleteUser(ctx, sessionToken(c), id); err != nil {
		s.flashError(c, err)
	}
	return c.Redirect(302, "/admin/users")
}

// --- Helpers ---

func (s *Server) resourceContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), resourceCallTimeout)
}

func paramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func optionalID(raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func listOptions(c echo.Context) apiclient.ListOptions {
	opts := apiclient.ListOptions{Limit: defaultPageSize}
	if skip, err := strconv.Atoi(c.QueryParam("skip")); err == nil && skip > 0 {
		opts.Skip = skip
	}
	return opts
}

// classifyForRetry maps error categories onto retry actions: transient
// failures back off normally, rate limits wait longer, everything else stops.
func classifyForRetry(err error) retry.Action {
	classified := errclass.Classify(err)
	if classified.Category == errclass.RateLimited {
		return retry.After
	}
	if classified.CanRetry {
		return retry.Retry
	}
	return retry.Stop
}
