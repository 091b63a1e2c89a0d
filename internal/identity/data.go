package identity

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Lisa", "Daniel", "Nancy",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
	"Kenneth", "Carol", "Kevin", "Amanda", "Brian", "Dorothy", "George", "Melissa",
	"Timothy", "Deborah", "Ronald", "Stephanie", "Edward", "Rebecca", "Jason", "Sharon",
	"Jeffrey", "Laura", "Ryan", "Cynthia", "Jacob", "Kathleen", "Gary", "Amy",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
	"Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Carter", "Roberts", "Gomez", "Phillips", "Evans", "Turner", "Diaz", "Parker",
}

// Occupations is the fixed catalog occupations are drawn from.
var Occupations = []string{
	"Software Engineer", "Teacher", "Doctor", "Nurse", "Lawyer", "Accountant",
	"Marketing Manager", "Sales Representative", "Graphic Designer", "Writer",
	"Chef", "Mechanic", "Electrician", "Plumber", "Architect", "Engineer",
	"Pharmacist", "Dentist", "Veterinarian", "Police Officer", "Firefighter",
	"Pilot", "Flight Attendant", "Real Estate Agent", "Insurance Agent",
	"Bank Teller", "Customer Service Rep", "Data Analyst", "Project Manager",
	"HR Manager", "Operations Manager", "Financial Advisor", "Consultant",
	"Photographer", "Journalist", "Social Worker", "Psychologist",
	"Physical Therapist", "Massage Therapist", "Personal Trainer",
	"Restaurant Manager", "Retail Manager", "Warehouse Worker", "Truck Driver",
	"Construction Worker", "Carpenter", "Painter", "Landscaper", "Janitor",
	"Security Guard", "Receptionist", "Administrative Assistant",
}

// EducationLevels is the fixed catalog education levels are drawn from.
var EducationLevels = []string{
	"High School Diploma",
	"Associate Degree",
	"Bachelor's Degree",
	"Master's Degree",
	"Doctoral Degree",
	"Professional Certificate",
	"Trade School Certificate",
	"Some College",
	"Graduate Certificate",
}

// BloodTypes lists the ABO groups.
var BloodTypes = []string{"A", "B", "AB", "O"}

// cardPrefixes are IIN prefixes by brand. 34 and 37 produce 15 digit
// numbers, everything else 16.
var cardPrefixes = []string{
	"4",                          // Visa
	"51", "52", "53", "54", "55", // MasterCard
	"34", "37", // American Express
	"6011", // Discover
}
