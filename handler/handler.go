package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"match-service/dto"
	"match-service/pkg/apperror"
	"match-service/service"
	"match-service/storage"
)

type ServiceDependencies struct {
	MatchService  service.MatchService
	WorkerService service.WorkerService
}

func ListMatches(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		matches, err := deps.MatchService.List(c.Request.Context(), currentUserID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, matches)
	}
}

func GetMatch(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		match, err := deps.MatchService.Get(c.Request.Context(), currentUserID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

func CreateMatch(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateMatchRequest
		if err := c.ShouldBind(&req); err != nil {
			writeError(c, apperror.InvalidRequest(err.Error()))
			return
		}

		var upload *dto.VideoUpload
		if file, err := c.FormFile("file"); err == nil {
			f, err := file.Open()
			if err != nil {
				writeError(c, apperror.InvalidRequest("failed to read uploaded file"))
				return
			}
			defer f.Close()
			upload = &dto.VideoUpload{Reader: f, Size: file.Size, Filename: file.Filename}
		}

		match, err := deps.MatchService.Create(c.Request.Context(), currentUserID(c), req, upload)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, match)
	}
}

func StreamVideo(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		obj, err := deps.MatchService.OpenVideo(c.Request.Context(), currentUserID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		streamObject(c, obj)
	}
}

func VideoDownloadURL(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		resp, err := deps.MatchService.DownloadURL(c.Request.Context(), currentUserID(c), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// NextJob is the worker pull endpoint. An empty poll is a 204, not an
// error; workers loop on it.
func NextJob(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := deps.WorkerService.NextJob(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if job == nil {
			c.Status(http.StatusNoContent)
			return
		}
		c.JSON(http.StatusOK, job)
	}
}

func CompleteJob(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.WorkerCompleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperror.InvalidRequest(err.Error()))
			return
		}
		match, err := deps.WorkerService.Complete(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, match)
	}
}

func WorkerStreamVideo(deps ServiceDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		obj, err := deps.WorkerService.OpenVideo(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		streamObject(c, obj)
	}
}

func streamObject(c *gin.Context, obj *storage.Object) {
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperror.InvalidRequest("id must be an integer"))
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		c.AbortWithStatusJSON(statusOf(ae.Kind), gin.H{
			"kind":    ae.Kind,
			"message": ae.Message,
		})
		return
	}
	zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"kind":    "Internal",
		"message": "internal server error",
	})
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidRequest:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindStorageFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
