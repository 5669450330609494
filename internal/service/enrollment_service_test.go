package service

import (
	"testing"

	"sankalp_backend/internal/model"
	"sankalp_backend/internal/testutil"
	"sankalp_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnrollmentService(f *fixture) *EnrollmentService {
	s := NewEnrollmentService(f.db, f.students, f.courses, f.enrollments, f.access, f.mail())
	s.now = f.clock.Now
	s.async = func(fn func()) { fn() }
	return s
}

func submitRequest(student *model.Student, course *model.Course) SubmitEnrollmentRequest {
	return SubmitEnrollmentRequest{
		Name:          student.Name,
		Email:         student.Email,
		TransactionID: " TXN-1001 ",
		CourseName:    course.Title,
		Amount:        499,
		CourseID:      course.ID,
	}
}

func TestSubmitRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	s := newEnrollmentService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 2)

	e, err := s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, e.Status)
	assert.Equal(t, "TXN-1001", e.TransactionID)
	assert.Equal(t, "asha@example.com", e.Email)

	_, err = s.Submit(student.ID, submitRequest(student, course))
	assert.ErrorIs(t, err, util.ErrEnrollmentPending)

	n, err := f.enrollments.CountByStatus(student.ID, course.ID, model.EnrollmentPending)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	req := submitRequest(student, course)
	req.CourseID = 9999
	_, err = s.Submit(student.ID, req)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestApproveGrantsAccessAndNotifies(t *testing.T) {
	f := newFixture(t)
	s := newEnrollmentService(f)
	student := testutil.CreateStudent(t, f.db, "ravi@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 2)

	status, err := s.Status(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentNone, status)

	_, err = s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)

	e, err := s.Approve("RAVI@example.com", course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, e.Status)
	require.NotNil(t, e.DecidedAt)

	ok, err := f.access.HasAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	status, err = s.Status(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentApproved, status)

	sent := f.mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "ravi@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "Enrollment approved")

	// 已通过不能再次审批，也不能重复提交
	_, err = s.Approve("ravi@example.com", course.ID)
	assert.ErrorIs(t, err, util.ErrPendingNotFound)
	_, err = s.Submit(student.ID, submitRequest(student, course))
	assert.ErrorIs(t, err, util.ErrEnrollmentApproved)
}

func TestApproveWithoutPendingGrantsNothing(t *testing.T) {
	f := newFixture(t)
	s := newEnrollmentService(f)
	student := testutil.CreateStudent(t, f.db, "meera@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	_, err := s.Approve("meera@example.com", course.ID)
	assert.ErrorIs(t, err, util.ErrPendingNotFound)

	ok, err := f.access.HasAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.mailer.all())
}

func TestRejectAllowsResubmission(t *testing.T) {
	f := newFixture(t)
	s := newEnrollmentService(f)
	student := testutil.CreateStudent(t, f.db, "dev@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	_, err := s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)

	e, err := s.Reject("dev@example.com", course.ID, "Payment not received")
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, e.Status)
	assert.Equal(t, "Payment not received", e.RejectReason)

	status, err := s.Status(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, status)

	ok, err := f.access.HasAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	sent := f.mailer.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].HTML, "Payment not received")

	_, err = s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)
	status, err = s.Status(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, status)

	pending := model.EnrollmentPending
	list, err := s.List(&pending)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	all, err := s.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func newAccessService(f *fixture) *AccessService {
	s := NewAccessService(f.db, f.students, f.access, f.enrollments)
	s.now = f.clock.Now
	return s
}

func TestRevokeAccess(t *testing.T) {
	f := newFixture(t)
	access := newAccessService(f)
	student := testutil.CreateStudent(t, f.db, "asha@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 1)
	testutil.Grant(t, f.db, student.ID, course.ID)

	st, err := access.CheckAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, st.HasAccess)
	assert.NotNil(t, st.GrantedDate)

	require.NoError(t, access.Revoke("asha@example.com", course.ID))
	st, err = access.CheckAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, st.HasAccess)

	assert.ErrorIs(t, access.Revoke("asha@example.com", course.ID), util.ErrNotFound)
	assert.ErrorIs(t, access.Revoke("ghost@example.com", course.ID), util.ErrStudentNotFound)
}

func TestRevokeClosesEnrollmentAndAllowsReenrollment(t *testing.T) {
	f := newFixture(t)
	s := newEnrollmentService(f)
	access := newAccessService(f)
	student := testutil.CreateStudent(t, f.db, "ravi@example.com")
	course, _ := testutil.CreateCourse(t, f.db, "Sankalp", 1)

	_, err := s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)
	_, err = s.Approve("ravi@example.com", course.ID)
	require.NoError(t, err)

	require.NoError(t, access.Revoke("ravi@example.com", course.ID))

	status, err := s.Status(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentRejected, status)
	latest, err := f.enrollments.Latest(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, util.RevokedReason, latest.RejectReason)

	e, err := s.Submit(student.ID, submitRequest(student, course))
	require.NoError(t, err)
	assert.Equal(t, model.EnrollmentPending, e.Status)

	_, err = s.Approve("ravi@example.com", course.ID)
	require.NoError(t, err)
	ok, err := f.access.HasAccess(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrincipalUsesCurrentEmail(t *testing.T) {
	f := newFixture(t)
	access := newAccessService(f)
	asha := testutil.CreateStudent(t, f.db, "asha@example.com")

	got, err := access.Principal(asha.ID, false, " Asha@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, got.ID)

	// 改邮箱后旧地址被他人注册，旧地址不再指向原学生
	require.NoError(t, f.students.UpdateFields(asha.ID, map[string]interface{}{"email": "asha2@example.com"}))
	other := testutil.CreateStudent(t, f.db, "asha@example.com")

	_, err = access.Principal(asha.ID, false, "asha@example.com")
	require.ErrorIs(t, err, util.ErrAccessDenied)
	assert.Equal(t, util.ReasonPrincipalMismatch, util.DenialReason(err))

	got, err = access.Principal(asha.ID, false, "asha2@example.com")
	require.NoError(t, err)
	assert.Equal(t, asha.ID, got.ID)

	// 管理员按邮箱定位任意学生
	got, err = access.Principal(0, true, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.ID)
	_, err = access.Principal(0, true, "ghost@example.com")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	_, err = access.Principal(9999, false, "asha@example.com")
	assert.Equal(t, util.ReasonUnknownPrincipal, util.DenialReason(err))
}
