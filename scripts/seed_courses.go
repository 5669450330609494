// 手动写入示例课程脚本
//
// 首次部署或本地开发时使用，写入一门带三个课时的示例课程。
// 视频地址请替换为实际的不公开 YouTube 链接。
//
// 用法: go run scripts/seed_courses.go [-config configs]

package main

import (
	"flag"
	"log"

	"sankalp_backend/internal/config"
	"sankalp_backend/internal/repository"
	"sankalp_backend/internal/service"
	"sankalp_backend/pkg/database"
	"sankalp_backend/pkg/logger"
)

func week(n int) *int { return &n }

func main() {
	configPath := flag.String("config", "configs", "配置文件所在目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	courses := service.NewCourseService(repository.NewCourseRepository(db))
	course, err := courses.Create(service.CreateCourseRequest{
		Title:       "Sankalp 2.0 Training Program",
		Description: "Comprehensive training program for students by SpectoV",
		Thumbnail:   "https://example.com/course-thumbnail.jpg",
		Modules: []service.CreateModuleRequest{
			{
				Title:     "Introduction to the Program",
				Day:       1,
				Week:      week(1),
				VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Materials: []string{"Introduction Slides", "Getting Started Guide"},
			},
			{
				Title:     "Core Concepts",
				Day:       2,
				Week:      week(1),
				VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Materials: []string{"Core Concepts PDF", "Practice Exercises"},
			},
			{
				Title:     "Advanced Techniques",
				Day:       3,
				Week:      week(1),
				VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
				Materials: []string{"Advanced Techniques Manual", "Case Studies"},
			},
		},
	})
	if err != nil {
		log.Fatalf("写入示例课程失败: %v", err)
	}

	log.Printf("完成！课程 ID: %d，课时数: %d", course.ID, len(course.Modules))
}
