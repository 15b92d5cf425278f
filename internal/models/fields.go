package models

// Field names a canonical case attribute.
type Field string

const (
	FieldCaseID         Field = "caseId"
	FieldPatientID      Field = "patientId"
	FieldPatientName    Field = "patientName"
	FieldAge            Field = "age"
	FieldSex            Field = "sex"
	FieldDept           Field = "dept"
	FieldBed            Field = "bed"
	FieldResident       Field = "resident"
	FieldFaculty        Field = "faculty"
	FieldPrimaryDx      Field = "primaryDx"
	FieldDiagnosis      Field = "diagnosis"
	FieldManagement     Field = "management"
	FieldSubmitted      Field = "submitted"
	FieldReviewRequired Field = "reviewRequired"
	FieldReviewDateTime Field = "reviewDateTime"
	FieldStatus         Field = "status"
)

// ValidationStatusKey holds the form tool's structured review verdict.
const ValidationStatusKey = "_validation_status"

// fieldAliases lists the source column names seen across form versions, most
// preferred first. It is never modified after init.
var fieldAliases = map[Field][]string{
	FieldCaseID:         {"Case ID", "Case_ID", "auto_caseid", "_id"},
	FieldPatientID:      {"Patient_ID", "Patient ID", "patient_id"},
	FieldPatientName:    {"patient_name", "Name", "patient"},
	FieldAge:            {"Age"},
	FieldSex:            {"Sex"},
	FieldDept:           {"department_seen", "Department Seen", "Department"},
	FieldBed:            {"Bed_No", "Bed No", "Bed"},
	FieldResident:       {"case_seen_by", "Case Seen By", "Case  Seen By"},
	FieldFaculty:        {"faculty_name", "Faculty Consulted", "Faculty"},
	FieldPrimaryDx:      {"Primary_Diagnosis", "Primary Diagnosis"},
	FieldDiagnosis:      {"diagnosis", "Diagnosis"},
	FieldManagement:     {"Management"},
	FieldSubmitted:      {"_submission_time", "submission_time", "start"},
	FieldReviewRequired: {"Review_Required", "Review Required"},
	FieldReviewDateTime: {"Review_Date_Time", "Review Date Time", "Review Date/Time"},
	FieldStatus:         {"status", "Status"},
}

// Aliases returns a copy of the alias list for the field; unknown fields have none.
func (f Field) Aliases() []string {
	aliases := fieldAliases[f]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}
