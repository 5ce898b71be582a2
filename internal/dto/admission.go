package dto

// AdmissionFormRequest is the admission form as submitted by a parent.
type AdmissionFormRequest struct {
	StudentFirstName string `json:"studentFirstName" validate:"min=2,max=50,latin_name"`
	StudentLastName  string `json:"studentLastName" validate:"min=2,max=50,latin_name"`
	StudentNameAr    string `json:"studentNameAr" validate:"min=2,max=100,arabic_name"`
	DOB              string `json:"dob" validate:"required,student_age"`
	Religion         string `json:"religion" validate:"min=2,max=50"`
	Citizenship      string `json:"citizenship" validate:"min=2,max=50"`
	SecondLang       string `json:"secondLang" validate:"min=2,max=50"`
	Address          string `json:"address" validate:"min=10,max=200"`
	Gender           string `json:"gender" validate:"oneof=Male Female"`

	School       string `json:"school" validate:"min=2,max=100"`
	Grade        string `json:"grade" validate:"min=2,max=50"`
	PrevSchool   string `json:"prevSchool,omitempty" validate:"omitempty,max=100"`
	ScholarNotes string `json:"scholarNotes,omitempty" validate:"omitempty,max=500"`

	FatherName     string `json:"fatherName" validate:"min=2,max=100"`
	FatherDOB      string `json:"fatherDob" validate:"required,guardian_age"`
	FatherPhone    string `json:"fatherPhone" validate:"required,eg_phone"`
	FatherEmail    string `json:"fatherEmail" validate:"required,simple_email,max=254"`
	FatherDegree   string `json:"fatherDegree" validate:"min=2,max=100"`
	FatherWork     string `json:"fatherWork" validate:"min=2,max=100"`
	FatherBusiness string `json:"fatherBusiness" validate:"min=5,max=200"`

	MotherName     string `json:"motherName" validate:"min=2,max=100"`
	MotherDOB      string `json:"motherDob" validate:"required,guardian_age"`
	MotherPhone    string `json:"motherPhone" validate:"required,eg_phone"`
	MotherEmail    string `json:"motherEmail" validate:"required,simple_email,max=254"`
	MotherDegree   string `json:"motherDegree" validate:"min=2,max=100"`
	MotherWork     string `json:"motherWork" validate:"min=2,max=100"`
	MotherBusiness string `json:"motherBusiness" validate:"min=5,max=200"`
}

// BookSlotRequest picks the entrance exam slot.
type BookSlotRequest struct {
	TestDate string `json:"testDate" form:"testDate"`
	TestTime string `json:"testTime" form:"testTime"`
}

// ReviewUpdateRequest carries reviewer edits; omitted fields are left untouched.
type ReviewUpdateRequest struct {
	Status     *string `json:"status" validate:"omitempty,max=50"`
	AdminNotes *string `json:"admin_notes" validate:"omitempty,max=2000"`
	TestResult *string `json:"test_result" validate:"omitempty,max=50"`
	TestDate   *string `json:"test_date" validate:"omitempty,max=20"`
	TestTime   *string `json:"test_time" validate:"omitempty,max=20"`
}
