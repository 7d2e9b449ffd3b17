package model

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}

// Student shares its primary key with the owning User row.
type Student struct {
	ID         uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	User       User   `gorm:"foreignKey:ID" json:"user"`
	StudyGroup string `gorm:"size:50" json:"studyGroup"`
}

func (Student) TableName() string {
	return "students"
}

// Teacher shares its primary key with the owning User row.
type Teacher struct {
	ID         uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	User       User   `gorm:"foreignKey:ID" json:"user"`
	Department string `gorm:"size:100" json:"department"`
}

func (Teacher) TableName() string {
	return "teachers"
}
