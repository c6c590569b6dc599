package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"clubhouse/internal/server/auth"
	"clubhouse/internal/server/database"
	"clubhouse/internal/server/service"
	"clubhouse/internal/server/storage"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the clubhouse app.
type Handler struct {
	accounts *service.AccountService
	board    *service.BoardService
	files    *service.FileService
	sessions *auth.Manager
	db       *database.DB
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(
	accounts *service.AccountService,
	board *service.BoardService,
	files *service.FileService,
	sessions *auth.Manager,
	db *database.DB,
) *Handler {
	return &Handler{
		accounts: accounts,
		board:    board,
		files:    files,
		sessions: sessions,
		db:       db,
	}
}

// HandleHome handles GET /.
// Renders the role-gated message board and the root folder listing.
func (h *Handler) HandleHome(c echo.Context) error {
	user := auth.Principal(c)

	role := database.RoleUser
	if user != nil {
		role = user.UserType
	}

	messages, err := h.board.List(c.Request().Context(), role)
	if err != nil {
		return mapServiceError(c, err)
	}

	listing, err := h.files.ListFolder("")
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"User":      user,
		"Messages":  messages,
		"Folders":   listing.Folders,
		"RootFiles": listing.Files,
	})
}

// HandleNewMessage handles POST /new-message. Requires a principal.
func (h *Handler) HandleNewMessage(c echo.Context) error {
	user := auth.Principal(c)

	title := c.FormValue("newMessageTitle")
	body := c.FormValue("newMessage")

	if err := h.board.Post(c.Request().Context(), user.Username, title, body); err != nil {
		return mapServiceError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleBecomeMember handles POST /become-a-member. Requires a principal;
// already a member redirects straight back.
func (h *Handler) HandleBecomeMember(c echo.Context) error {
	user := auth.Principal(c)
	passcode := c.FormValue("membershipPasscode")

	if err := h.accounts.Upgrade(c.Request().Context(), user, passcode); err != nil {
		return mapServiceError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleSignUpForm handles GET /sign-up.
func (h *Handler) HandleSignUpForm(c echo.Context) error {
	return c.Render(http.StatusOK, "signUp.html", nil)
}

// HandleSignUp handles POST /sign-up.
func (h *Handler) HandleSignUp(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	confirm := c.FormValue("confirmPassword")

	if err := h.accounts.SignUp(c.Request().Context(), username, password, confirm); err != nil {
		return mapServiceError(c, err)
	}

	return c.Redirect(http.StatusSeeOther, "/log-in")
}

// HandleLogInForm handles GET /log-in.
func (h *Handler) HandleLogInForm(c echo.Context) error {
	return c.Render(http.StatusOK, "logIn.html", nil)
}

// HandleLogIn handles POST /log-in.
// Verifies credentials and establishes a server-side session.
func (h *Handler) HandleLogIn(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := h.accounts.Authenticate(c.Request().Context(), username, password)
	if err != nil {
		return mapServiceError(c, err)
	}

	if err := h.sessions.Establish(c, user.Username); err != nil {
		slog.Error("failed to establish session", "username", user.Username, "error", err)
		return c.String(http.StatusInternalServerError, "Server error during log-in.")
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleLogOut handles GET /log-out.
// Destroy errors are logged but the redirect away still happens.
func (h *Handler) HandleLogOut(c echo.Context) error {
	if err := h.sessions.Destroy(c); err != nil {
		slog.Error("failed to destroy session", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleUploadForm handles GET /upload.
func (h *Handler) HandleUploadForm(c echo.Context) error {
	return c.Render(http.StatusOK, "fileUploaderForm.html", nil)
}

// HandleUpload handles POST /upload.
// Accepts a single-file multipart upload into the upload root and reports
// both the original and the generated storage filename.
func (h *Handler) HandleUpload(c echo.Context) error {
	saved, err := h.saveFormFile(c, "")
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "File uploaded successfully!",
		"file": echo.Map{
			"originalname": saved.OriginalName,
			"filename":     saved.StoredName,
			"path":         saved.Path,
			"size":         saved.Size,
			"description":  c.FormValue("description"),
		},
	})
}

// HandleFolder handles GET /folder/*.
// The wildcard remainder is the target directory.
func (h *Handler) HandleFolder(c echo.Context) error {
	listing, err := h.files.ListFolder(c.Param("*"))
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.Render(http.StatusOK, "folder.html", echo.Map{
		"Path":    listing.Path,
		"Folders": listing.Folders,
		"Files":   listing.Files,
	})
}

// HandleFolderAction handles POST /folder/*.
// Echo wildcards are terminal, so the trailing segment selects the action:
// ".../upload" receives a file into the folder, ".../create" makes a
// subfolder. Anything else is not a route.
func (h *Handler) HandleFolderAction(c echo.Context) error {
	dir, action := splitFolderAction(c.Param("*"))

	switch action {
	case "upload":
		if _, err := h.saveFormFile(c, dir); err != nil {
			return mapServiceError(c, err)
		}
	case "create":
		if err := h.files.CreateFolder(dir, c.FormValue("folderName")); err != nil {
			return mapServiceError(c, err)
		}
	default:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Folder not found."})
	}

	return c.Redirect(http.StatusSeeOther, "/folder/"+dir)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(c echo.Context) error {
	status := "healthy"
	dbStatus := "connected"

	if err := h.db.HealthCheck(c.Request().Context()); err != nil {
		status = "degraded"
		dbStatus = "error"
		slog.Error("health check failed", "error", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":   status,
		"database": dbStatus,
	})
}

// errNoFile marks a multipart request with no "file" field.
var errNoFile = errors.New("no file uploaded")

// saveFormFile spools the multipart "file" field into the folder at dir.
func (h *Handler) saveFormFile(c echo.Context, dir string) (*storage.SavedFile, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	return h.files.SaveUpload(dir, fileHeader.Filename, src)
}

// splitFolderAction separates the wildcard remainder into the target
// directory and the trailing action segment.
func splitFolderAction(tail string) (dir, action string) {
	tail = strings.Trim(path.Clean("/"+tail), "/")
	if tail == "" {
		return "", ""
	}
	if i := strings.LastIndex(tail, "/"); i >= 0 {
		return tail[:i], tail[i+1:]
	}
	return "", tail
}

// mapServiceError translates service-layer errors into HTTP responses.
// Unexpected failures are logged and surfaced as a generic 500.
func mapServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.String(http.StatusUnauthorized, "Incorrect username or password.")
	case errors.Is(err, service.ErrWrongPasscode):
		return c.String(http.StatusUnauthorized, "Incorrect passcode. Please try again.")
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.String(http.StatusBadRequest, "Passwords do not match.")
	case errors.Is(err, service.ErrMissingField):
		return c.String(http.StatusBadRequest, "Required field is missing.")
	case errors.Is(err, service.ErrInvalidPath):
		return c.String(http.StatusBadRequest, "Invalid folder path.")
	case errors.Is(err, service.ErrUsernameTaken):
		return c.String(http.StatusConflict, "Username is already taken.")
	case errors.Is(err, service.ErrFolderExists):
		return c.JSON(http.StatusConflict, echo.Map{"message": "Folder already exists."})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Folder not found."})
	case errors.Is(err, errNoFile):
		return c.String(http.StatusBadRequest, "No file uploaded.")
	default:
		slog.Error("unexpected error", "path", c.Request().URL.Path, "error", err)
		return c.String(http.StatusInternalServerError, "Server error.")
	}
}
