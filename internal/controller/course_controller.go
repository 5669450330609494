package controller

import (
	"net/http"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/service"
	"sankalp_backend/internal/util"
	"sankalp_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CourseController struct {
	CourseService  *service.CourseService
	StorageService *service.StorageService
}

func NewCourseController(courseService *service.CourseService, storageService *service.StorageService) *CourseController {
	return &CourseController{
		CourseService:  courseService,
		StorageService: storageService,
	}
}

// List godoc
// @Summary 课程列表
// @Tags 课程
// @Produce  json
// @Success 200 {array} model.Course
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	courses, err := c.CourseService.List()
	if err != nil {
		util.LogInternalError(ctx, "Failed to fetch courses", err)
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	ctx.JSON(http.StatusOK, courses)
}

// Modules godoc
// @Summary 课程课时
// @Description 按 day、id 升序返回
// @Tags 课程
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {array} model.Module
// @Failure 400 {object} util.MessageResponse "课程ID无效"
// @Router /api/course-modules/{courseId} [get]
func (c *CourseController) Modules(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("courseId"))
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	modules, err := c.CourseService.Modules(courseID)
	if err != nil {
		util.LogInternalError(ctx, "Failed to fetch course modules", err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	ctx.JSON(http.StatusOK, modules)
}

// Materials godoc
// @Summary 课程资料
// @Tags 课程
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {array} model.Material
// @Failure 400 {object} util.MessageResponse "课程ID无效"
// @Router /api/module-materials/{courseId} [get]
func (c *CourseController) Materials(ctx *gin.Context) {
	courseID, ok := util.ParseID(ctx.Param("courseId"))
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	materials, err := c.CourseService.Materials(courseID)
	if err != nil {
		util.LogInternalError(ctx, "Failed to fetch module materials", err)
		return
	}
	if materials == nil {
		materials = []model.Material{}
	}
	ctx.JSON(http.StatusOK, materials)
}

// Create godoc
// @Summary 创建课程
// @Description 课程、课时、资料在同一事务内写入，任一失败整体回滚
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CreateCourseRequest true "课程信息"
// @Success 201 {object} object{message=string,courseId=int}
// @Failure 400 {object} util.MessageResponse "课程数据无效"
// @Router /api/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CreateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Log.Debug("Invalid course payload", zap.Error(err))
		util.BadRequest(ctx, "Invalid course data")
		return
	}

	course, err := c.CourseService.Create(req)
	if err != nil {
		respondError(ctx, err, "Failed to create course")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "Course created successfully",
		"courseId": course.ID,
	})
}

// Delete godoc
// @Summary 删除课程
// @Description 级联删除课时、资料、授权与学习进度
// @Tags 管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.MessageResponse
// @Failure 404 {object} util.MessageResponse "课程不存在"
// @Router /api/courses/{id} [delete]
func (c *CourseController) Delete(ctx *gin.Context) {
	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "Invalid course ID")
		return
	}

	if err := c.CourseService.Delete(id); err != nil {
		respondError(ctx, err, "Failed to delete course")
		return
	}
	util.Message(ctx, http.StatusOK, "Course deleted successfully")
}

// UploadMaterial godoc
// @Summary 上传课时资料
// @Tags 管理
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   moduleId formData int true "课时ID"
// @Param   file formData file true "资料文件"
// @Success 201 {object} model.Material
// @Failure 400 {object} util.MessageResponse "文件类型不允许"
// @Failure 404 {object} util.MessageResponse "课时不存在"
// @Router /api/materials/upload [post]
func (c *CourseController) UploadMaterial(ctx *gin.Context) {
	moduleID, ok := util.ParseID(ctx.PostForm("moduleId"))
	if !ok {
		util.BadRequest(ctx, "moduleId is required")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, "Failed to open uploaded file", err)
		return
	}
	defer file.Close()

	material, err := c.StorageService.UploadMaterial(ctx.Request.Context(), moduleID, fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		respondError(ctx, err, "Failed to upload material")
		return
	}
	ctx.JSON(http.StatusCreated, material)
}

// DownloadMaterial godoc
// @Summary 下载课时资料
// @Description 需持有课程授权；远程存储重定向到预签名地址，本地存储直接返回文件
// @Tags 课程
// @Produce  octet-stream
// @Security ApiKeyAuth
// @Param   id path int true "资料ID"
// @Success 200 {file} file
// @Success 302 {string} string "预签名地址"
// @Failure 403 {object} util.MessageResponse "无课程授权"
// @Failure 404 {object} util.MessageResponse "资料不存在"
// @Router /api/materials/{id}/download [get]
func (c *CourseController) DownloadMaterial(ctx *gin.Context) {
	claims := currentUser(ctx)
	if claims == nil {
		return
	}

	id, ok := util.ParseID(ctx.Param("id"))
	if !ok {
		util.BadRequest(ctx, "Invalid material ID")
		return
	}

	material, loc, err := c.StorageService.LocateMaterial(ctx.Request.Context(), claims.UserID, claims.Role == model.RoleAdmin, id)
	if err != nil {
		if reason := util.DenialReason(err); reason != "" {
			logger.Log.Warn("Material access denied",
				zap.String("reason", reason),
				zap.Uint("userId", claims.UserID),
				zap.Uint("materialId", id),
			)
		}
		respondError(ctx, err, "Failed to download material")
		return
	}

	if loc.URL != "" {
		ctx.Redirect(http.StatusFound, loc.URL)
		return
	}
	ctx.FileAttachment(loc.Path, material.Material)
}
