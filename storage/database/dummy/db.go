package dummydb

import (
	"sync"

	"github.com/trezcool/shule/core/enrollment"
	"github.com/trezcool/shule/core/guardian"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

// DB is an in-memory database for tests and local hacking.
type DB struct {
	user       *userTable
	guardian   *guardianTable
	student    *studentTable
	enrollment *enrollmentTables
}

type (
	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	guardianTable struct {
		sync.RWMutex
		table map[string]*guardian.Guardian
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	enrollmentTables struct {
		sync.RWMutex
		classrooms  map[string]*enrollment.Classroom
		classes     map[string]*enrollment.Class
		assignments map[string]*enrollment.Assignment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:     &userTable{table: make(map[string]*user.User)},
		guardian: &guardianTable{table: make(map[string]*guardian.Guardian)},
		student:  &studentTable{table: make(map[string]*student.Student)},
		enrollment: &enrollmentTables{
			classrooms:  make(map[string]*enrollment.Classroom),
			classes:     make(map[string]*enrollment.Class),
			assignments: make(map[string]*enrollment.Assignment),
		},
	}
	return db, nil
}
