package trix

import (
	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/trix-studio/trix/pkg/logging"
	"github.com/trix-studio/trix/pkg/trix/handler"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/wI2L/fizz"
	"github.com/wI2L/fizz/openapi"
	"go.uber.org/zap"
)

var (
	apiVersionHeader = fizz.Header(
		"API-Version",
		"API version of the response",
		"",
	)

	notFoundResponse  = fizz.Response("404", "Not Found", nil, nil, nil)
	forbiddenResponse = fizz.Response("403", "Forbidden", nil, nil, nil)
)

// Controllers groups the handlers served by the router.
type Controllers struct {
	Auth       *handler.AuthController
	Designs    *handler.DesignsAPIController
	Profiles   *handler.ProfilesAPIController
	Social     *handler.SocialAPIController
	Inpainting *handler.InpaintingAPIController
}

func NewRouter(apiVersion string, jwtSecret []byte, c Controllers) *fizz.Fizz {
	tonic.SetErrorHook(handler.ErrorHook)

	g := gin.New()
	g.Use(gin.Recovery(), logging.Middleware(zap.L()), APIVersionMiddleware(apiVersion))
	f := fizz.NewFromEngine(g)

	f.Generator().SetServers([]*openapi.Server{
		{URL: "/v1", Description: "Current host"},
	})
	f.Generator().API().Components.Headers["API-Version"] = &openapi.HeaderOrRef{
		Header: &openapi.Header{
			Description: "API version of the response",
			Schema:      &openapi.SchemaOrRef{Schema: &openapi.Schema{Type: "string"}},
		},
	}

	info := &openapi.Info{
		Title:       "triX API v1",
		Description: "Social image-design platform with AI inpainting",
		Version:     apiVersion,
	}

	optional := middleware.OptionalUser(jwtSecret)
	read := middleware.RequireAccess(jwtSecret, middleware.ScopeRead)
	write := middleware.RequireAccess(jwtSecret, middleware.ScopeWrite)

	root := f.Group("/v1", "API v1", "triX V1 routes")

	// Public endpoints; a bearer token, when present, identifies the caller.
	public := root.Group("", "Public", "Browsing designs and profiles", optional)
	public.POST("/auth/register",
		[]fizz.OperationOption{fizz.ID("register"), fizz.Summary("Create an account"), apiVersionHeader},
		tonic.Handler(c.Auth.Register, 201),
	)
	public.POST("/auth/login",
		[]fizz.OperationOption{fizz.ID("login"), fizz.Summary("Obtain an access token"), apiVersionHeader},
		tonic.Handler(c.Auth.Login, 200),
	)
	public.GET("/designs",
		[]fizz.OperationOption{fizz.ID("listDesigns"), fizz.Summary("Published designs gallery"), apiVersionHeader},
		tonic.Handler(c.Designs.Gallery, 200),
	)
	public.GET("/designs/latest",
		[]fizz.OperationOption{fizz.ID("latestDesigns"), fizz.Summary("Newest published designs"), apiVersionHeader},
		tonic.Handler(c.Designs.Latest, 200),
	)
	public.GET("/designs/search",
		[]fizz.OperationOption{fizz.ID("searchDesigns"), fizz.Summary("Search published designs"), apiVersionHeader},
		tonic.Handler(c.Designs.Search, 200),
	)
	public.GET("/designs/trending",
		[]fizz.OperationOption{fizz.ID("trendingDesigns"), fizz.Summary("Most liked designs of the last week"), apiVersionHeader},
		tonic.Handler(c.Designs.Trending, 200),
	)
	public.GET("/designs/:id",
		[]fizz.OperationOption{fizz.ID("retrieveDesign"), fizz.Summary("Retrieve a design"), apiVersionHeader, notFoundResponse, forbiddenResponse},
		tonic.Handler(c.Designs.RetrieveDesign, 200),
	)
	public.GET("/designs/:id/comments",
		[]fizz.OperationOption{fizz.ID("listComments"), fizz.Summary("Threaded comments of a design"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Social.ListComments, 200),
	)
	public.POST("/designs/:id/views",
		[]fizz.OperationOption{fizz.ID("trackView"), fizz.Summary("Record a view of a design"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Social.TrackView, 200),
	)
	public.GET("/tags/:tag/designs",
		[]fizz.OperationOption{fizz.ID("designsByTag"), fizz.Summary("Published designs with a tag"), apiVersionHeader},
		tonic.Handler(c.Designs.ByTag, 200),
	)
	public.GET("/profiles/:username",
		[]fizz.OperationOption{fizz.ID("retrieveProfile"), fizz.Summary("Retrieve a user profile"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Profiles.RetrieveProfile, 200),
	)
	public.POST("/contact",
		[]fizz.OperationOption{fizz.ID("submitContact"), fizz.Summary("Send a message to the team"), apiVersionHeader},
		tonic.Handler(c.Social.SubmitContact, 201),
	)

	reader := root.Group("", "Account", "Endpoints for logged-in users", read)
	reader.GET("/auth/me",
		[]fizz.OperationOption{fizz.ID("me"), fizz.Summary("Profile of the caller"), apiVersionHeader},
		tonic.Handler(c.Auth.Me, 200),
	)
	reader.GET("/ai/status",
		[]fizz.OperationOption{fizz.ID("aiStatus"), fizz.Summary("Inpainting availability"), apiVersionHeader},
		tonic.Handler(c.Inpainting.Status, 200),
	)

	writer := root.Group("", "Write", "Creating and changing content", write)
	writer.PUT("/designs/:id",
		[]fizz.OperationOption{fizz.ID("updateDesign"), fizz.Summary("Update a design"), apiVersionHeader, notFoundResponse, forbiddenResponse},
		tonic.Handler(c.Designs.UpdateDesign, 200),
	)
	writer.DELETE("/designs/:id",
		[]fizz.OperationOption{fizz.ID("deleteDesign"), fizz.Summary("Delete a design"), notFoundResponse, forbiddenResponse},
		tonic.Handler(c.Designs.DeleteDesign, 204),
	)
	writer.POST("/designs/:id/like",
		[]fizz.OperationOption{fizz.ID("toggleLike"), fizz.Summary("Like or unlike a design"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Social.ToggleLike, 200),
	)
	writer.POST("/designs/:id/comments",
		[]fizz.OperationOption{fizz.ID("addComment"), fizz.Summary("Comment on a design"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Social.AddComment, 201),
	)
	writer.POST("/profiles/:username/follow",
		[]fizz.OperationOption{fizz.ID("toggleFollow"), fizz.Summary("Follow or unfollow a user"), apiVersionHeader, notFoundResponse},
		tonic.Handler(c.Social.ToggleFollow, 200),
	)
	writer.PUT("/profile",
		[]fizz.OperationOption{fizz.ID("updateProfile"), fizz.Summary("Update the caller's profile"), apiVersionHeader},
		tonic.Handler(c.Profiles.UpdateProfile, 200),
	)
	writer.DELETE("/profile/avatar",
		[]fizz.OperationOption{fizz.ID("removeAvatar"), fizz.Summary("Remove the caller's avatar"), apiVersionHeader},
		tonic.Handler(c.Profiles.RemoveAvatar, 200),
	)
	writer.POST("/ai/inpaint",
		[]fizz.OperationOption{fizz.ID("inpaint"), fizz.Summary("Repaint the masked region of an uploaded image"), apiVersionHeader},
		tonic.Handler(c.Inpainting.Inpaint, 200),
	)

	// Multipart uploads are served by gin directly.
	uploads := g.Group("/v1", write)
	uploads.POST("/designs", c.Designs.CreateDesign)
	uploads.PUT("/designs/:id/image", c.Designs.ReplaceImage)
	uploads.PUT("/profile/avatar", c.Profiles.UploadAvatar)
	uploads.POST("/ai/upload", c.Inpainting.Upload)

	f.GET("/v1/openapi.json", nil, f.OpenAPI(info, "json"))

	return f
}

type apiVersionWriter struct {
	gin.ResponseWriter
	version string
}

func (w *apiVersionWriter) WriteHeader(code int) {
	if code >= 200 && code < 300 {
		w.Header().Set("API-Version", w.version)
	}
	w.ResponseWriter.WriteHeader(code)
}

func APIVersionMiddleware(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &apiVersionWriter{c.Writer, version}
		c.Next()
	}
}
