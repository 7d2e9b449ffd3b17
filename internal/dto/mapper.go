package dto

import "unilearn_backend/internal/model"

func ToCourseDto(course *model.Course) CourseDto {
	d := CourseDto{
		ID:          course.ID,
		Title:       course.Title,
		Slug:        course.Slug,
		Description: course.Description,
		CoverURL:    course.CoverURL,
		IsPublic:    course.IsPublic,
		TeacherID:   course.TeacherID,
		TeacherName: teacherName(course),
		Modules:     make([]ModuleDto, 0, len(course.Modules)),
	}
	for i := range course.Modules {
		d.Modules = append(d.Modules, ToModuleDto(&course.Modules[i]))
	}
	return d
}

func ToModuleDto(module *model.Module) ModuleDto {
	return ModuleDto{
		ID:        module.ID,
		Title:     module.Title,
		Order:     module.Order,
		QuizCount: len(module.Quizzes),
	}
}

func ToCourseSummaryDto(course *model.Course) CourseSummaryDto {
	return CourseSummaryDto{
		ID:          course.ID,
		Title:       course.Title,
		Slug:        course.Slug,
		Description: course.Description,
		CoverURL:    course.CoverURL,
		IsPublic:    course.IsPublic,
		TeacherName: teacherName(course),
	}
}

func ToCourseSummaryDtoList(courses []model.Course) []CourseSummaryDto {
	list := make([]CourseSummaryDto, 0, len(courses))
	for i := range courses {
		list = append(list, ToCourseSummaryDto(&courses[i]))
	}
	return list
}

func ToStudentDto(student *model.Student) StudentDto {
	return StudentDto{
		ID:         student.ID,
		Name:       student.User.Name,
		Email:      student.User.Email,
		StudyGroup: student.StudyGroup,
	}
}

func ToStudentDtoList(students []model.Student) []StudentDto {
	list := make([]StudentDto, 0, len(students))
	for i := range students {
		list = append(list, ToStudentDto(&students[i]))
	}
	return list
}

func ToQuizDto(quiz *model.Quiz) QuizDto {
	return QuizDto{
		ID:           quiz.ID,
		ModuleID:     quiz.ModuleID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
	}
}

func teacherName(course *model.Course) string {
	if course.Teacher == nil {
		return ""
	}
	return course.Teacher.User.Name
}
