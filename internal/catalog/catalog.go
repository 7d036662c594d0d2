// Package catalog holds the bundled condition and medicine reference data.
package catalog

import (
	"strings"

	"github.com/sahoo-ansu/I-MED/internal/models"
)

// Entry is one condition together with the medicines suggested for it.
type Entry struct {
	Condition models.Condition
	Medicines []models.Medicine
}

var (
	anyAge   = []models.AgeGroup{models.AgeGroupChild, models.AgeGroupAdult, models.AgeGroupOld}
	grownUps = []models.AgeGroup{models.AgeGroupAdult, models.AgeGroupOld}
)

func med(name string, prescription bool, description string, groups []models.AgeGroup) models.Medicine {
	generic := name
	if i := strings.Index(name, " ("); i > 0 {
		generic = name[:i]
	}
	return models.Medicine{
		Name:                 name,
		GenericName:          generic,
		RequiresPrescription: prescription,
		Description:          description,
		AllowedAgeGroups:     groups,
	}
}

const emergencyVisit = "EMERGENCY: Contact hospital immediately"

var entries = []Entry{
	{
		Condition: models.Condition{
			Name:                "COLD",
			Description:         "A viral infection of the upper respiratory tract that primarily affects the nose and throat.",
			SymptomKeywords:     []string{"runny nose", "congestion", "sore throat", "cough", "sneezing", "mild fever", "headache"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "Only if symptoms persist beyond 7-10 days or worsen significantly",
			Advice:              "Rest, stay hydrated, use a humidifier, and consider zinc supplements within 24 hours of symptom onset",
		},
		Medicines: []models.Medicine{
			med("Acetaminophen (Tylenol)", false, "Reduces fever and relieves pain", anyAge),
			med("Dextromethorphan (Robitussin DM)", false, "Suppresses cough", grownUps),
			med("Pseudoephedrine (Sudafed)", false, "Relieves nasal congestion", grownUps),
			med("Guaifenesin (Mucinex)", false, "Expectorant to help clear mucus", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "FLU",
			Description:         "Influenza is a viral infection that attacks the nose, throat and lungs.",
			SymptomKeywords:     []string{"fever", "body aches", "chills", "fatigue", "cough", "headache", "sore throat"},
			Severity:            models.ConditionModerate,
			RequiresDoctorVisit: true,
			DoctorVisitGuidance: "Recommended if symptoms are severe, especially for high-risk individuals (elderly, pregnant, immunocompromised)",
			Advice:              "Rest, stay hydrated, isolate to prevent spreading, and consider antiviral medication if diagnosed early",
		},
		Medicines: []models.Medicine{
			med("Oseltamivir (Tamiflu)", true, "Antiviral that can shorten flu duration if taken early (within 48 hours)", grownUps),
			med("Ibuprofen (Advil)", false, "Reduces fever and relieves body aches", grownUps),
			med("Acetaminophen (Tylenol)", false, "Alternative to ibuprofen for pain and fever", anyAge),
			med("Phenylephrine (Sudafed PE)", false, "Nasal decongestant", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "HEADACHE",
			Description:         "Pain in any region of the head, which can be a symptom of various conditions.",
			SymptomKeywords:     []string{"headache", "pain in head", "throbbing", "pressure", "tension", "migraine"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If headaches are severe, recurring, sudden onset, or accompanied by fever, vision changes, or neck stiffness",
			Advice:              "Rest in a quiet, dark room, stay hydrated, apply cold or warm compress, and maintain regular sleep schedule",
		},
		Medicines: []models.Medicine{
			med("Ibuprofen (Advil, Motrin)", false, "Anti-inflammatory that relieves pain and reduces inflammation", grownUps),
			med("Acetaminophen (Tylenol)", false, "Pain reliever with fewer gastrointestinal side effects", anyAge),
			med("Aspirin", false, "Pain relief and anti-inflammatory, avoid in children", grownUps),
			med("Sumatriptan (Imitrex)", true, "Specifically for migraine headaches", grownUps),
			med("Rizatriptan (Maxalt)", true, "Fast-acting migraine medication", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "MIGRAINE",
			Description:         "Recurring attacks of moderate to severe throbbing head pain, often with nausea and sensitivity to light.",
			SymptomKeywords:     []string{"migraine", "severe headache", "throbbing headache", "light sensitivity", "sound sensitivity", "visual aura"},
			Severity:            models.ConditionModerate,
			DoctorVisitGuidance: "For diagnosis, prevention strategies, or if over-the-counter medications are ineffective",
			Advice:              "Dark, quiet room; cold compress; avoid triggers like certain foods, stress, or lack of sleep",
		},
		Medicines: []models.Medicine{
			med("Sumatriptan (Imitrex)", true, "First-line treatment for acute migraine attacks", grownUps),
			med("Rizatriptan (Maxalt)", true, "Fast-dissolving triptan for migraines", grownUps),
			med("Ibuprofen (high dose)", false, "600-800mg can be effective for mild migraines", grownUps),
			med("Excedrin Migraine", false, "Combination of acetaminophen, aspirin, and caffeine", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "STOMACHACHE",
			Description:         "Pain or discomfort in the abdomen, which can be caused by various digestive issues.",
			SymptomKeywords:     []string{"stomach pain", "abdominal pain", "nausea", "vomiting", "indigestion", "heartburn", "bloating"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If pain is severe, persistent (>24 hours), or accompanied by fever, vomiting, or blood in stool",
			Advice:              "Avoid spicy or fatty foods, eat smaller meals, stay hydrated with clear fluids, and consider the BRAT diet",
		},
		Medicines: []models.Medicine{
			med("Bismuth subsalicylate (Pepto-Bismol)", false, "Treats indigestion, upset stomach, and mild diarrhea", anyAge),
			med("Famotidine (Pepcid)", false, "Reduces stomach acid production for heartburn", grownUps),
			med("Omeprazole (Prilosec)", false, "Proton pump inhibitor for acid reflux and heartburn", grownUps),
			med("Simethicone (Gas-X)", false, "Relieves gas and bloating", anyAge),
			med("Loperamide (Imodium)", false, "For diarrhea symptoms", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "ALLERGIES",
			Description:         "An abnormal immune response to substances that are typically harmless to most people.",
			SymptomKeywords:     []string{"sneezing", "itchy eyes", "runny nose", "congestion", "rash", "hives", "allergic"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If over-the-counter medications don't provide relief or for allergy testing",
			Advice:              "Avoid known allergens, use air purifiers, keep windows closed during high pollen days, and shower after outdoor activities",
		},
		Medicines: []models.Medicine{
			med("Cetirizine (Zyrtec)", false, "24-hour non-drowsy antihistamine for allergy symptoms", anyAge),
			med("Loratadine (Claritin)", false, "Non-drowsy antihistamine alternative", anyAge),
			med("Fexofenadine (Allegra)", false, "Non-drowsy, fast-acting antihistamine", anyAge),
			med("Fluticasone (Flonase)", false, "Nasal spray for congestion, sneezing, and runny nose", anyAge),
			med("Benadryl (Diphenhydramine)", false, "For severe allergic reactions (causes drowsiness)", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "SORE_THROAT",
			SymptomKeywords:     []string{"sore throat", "throat pain", "scratchy throat", "painful swallowing", "hoarse voice"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If severe pain, difficulty swallowing, fever >101°F, or white patches on throat",
			Advice:              "Gargle with warm salt water, drink warm liquids, use a humidifier, and rest your voice",
		},
		Medicines: []models.Medicine{
			med("Throat lozenges with menthol", false, "Provides temporary relief and keeps throat moist", anyAge),
			med("Ibuprofen (Advil)", false, "Reduces inflammation and pain", anyAge),
			med("Acetaminophen (Tylenol)", false, "Pain relief alternative", anyAge),
			med("Chloraseptic spray", false, "Topical anesthetic for immediate relief", anyAge),
			med("Amoxicillin", true, "Antibiotic for bacterial infections (strep throat)", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "COUGH",
			SymptomKeywords:     []string{"cough", "dry cough", "wet cough", "chest congestion", "phlegm", "mucus"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If cough persists >3 weeks, produces blood, or is accompanied by fever and weight loss",
			Advice:              "Stay hydrated, use a humidifier, avoid irritants like smoke, and try honey for natural relief",
		},
		Medicines: []models.Medicine{
			med("Dextromethorphan (Robitussin DM)", false, "Cough suppressant for dry coughs", anyAge),
			med("Guaifenesin (Mucinex)", false, "Expectorant to help loosen mucus", anyAge),
			med("Honey", false, "Natural cough suppressant (not for children under 1 year)", anyAge),
			med("Codeine cough syrup", true, "For severe, persistent coughs", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "DIARRHEA",
			SymptomKeywords:     []string{"diarrhea", "loose stools", "watery stools", "frequent bowel movements", "stomach cramps"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If severe dehydration, blood in stool, fever >101.3°F, or symptoms persist >3 days",
			Advice:              "Stay hydrated with clear fluids, follow the BRAT diet, avoid dairy and fatty foods, and rest",
		},
		Medicines: []models.Medicine{
			med("Loperamide (Imodium)", false, "Slows down intestinal movement to reduce diarrhea", anyAge),
			med("Bismuth subsalicylate (Pepto-Bismol)", false, "Reduces inflammation and kills bacteria", anyAge),
			med("Oral rehydration solution", false, "Prevents dehydration from fluid loss", anyAge),
			med("Probiotics", false, "Helps restore healthy gut bacteria", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "CONSTIPATION",
			SymptomKeywords:     []string{"constipation", "hard stools", "infrequent bowel movements", "straining", "bloating"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If constipation persists >3 days, severe abdominal pain, or rectal bleeding",
			Advice:              "Increase fiber intake, drink more water, exercise regularly, and establish a routine",
		},
		Medicines: []models.Medicine{
			med("Polyethylene glycol (Miralax)", false, "Osmotic laxative that draws water into intestines", anyAge),
			med("Docusate (Colace)", false, "Stool softener for gentle relief", anyAge),
			med("Senna (Senokot)", false, "Stimulant laxative for short-term use", anyAge),
			med("Psyllium husk (Metamucil)", false, "Fiber supplement to promote regularity", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "NAUSEA",
			SymptomKeywords:     []string{"nausea", "queasy", "vomiting", "motion sickness", "vertigo"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If accompanied by severe abdominal pain, signs of dehydration, or persistent vomiting",
			Advice:              "Eat small, bland meals; avoid strong odors; stay hydrated with small sips of clear fluids",
		},
		Medicines: []models.Medicine{
			med("Meclizine (Dramamine)", false, "For motion sickness and vertigo-related nausea", anyAge),
			med("Ginger supplements", false, "Natural anti-nausea remedy", anyAge),
			med("Ondansetron (Zofran)", true, "Powerful anti-nausea medication", anyAge),
			med("Promethazine (Phenergan)", true, "For severe nausea and vomiting", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "INSOMNIA",
			SymptomKeywords:     []string{"insomnia", "can't sleep", "trouble sleeping", "waking up at night", "sleeplessness"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If insomnia persists >2 weeks or significantly impacts daily functioning",
			Advice:              "Maintain regular sleep schedule, avoid caffeine late in day, create comfortable sleep environment, and limit screen time before bed",
		},
		Medicines: []models.Medicine{
			med("Melatonin", false, "Natural sleep aid to regulate sleep-wake cycle", anyAge),
			med("Diphenhydramine (Benadryl)", false, "Antihistamine with sedating effects", anyAge),
			med("Doxylamine (Unisom)", false, "Sleep aid for short-term use", anyAge),
			med("Zolpidem (Ambien)", true, "Prescription sleep medication", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "ANXIETY",
			SymptomKeywords:     []string{"anxiety", "anxious", "panic", "nervousness", "racing thoughts", "restlessness"},
			Severity:            models.ConditionModerate,
			DoctorVisitGuidance: "If anxiety significantly impacts daily life, work, or relationships",
			Advice:              "Practice deep breathing, regular exercise, limit caffeine, consider meditation or therapy, and maintain social connections",
		},
		Medicines: []models.Medicine{
			med("L-theanine supplements", false, "Natural amino acid for relaxation", anyAge),
			med("Magnesium supplements", false, "May help reduce anxiety symptoms", anyAge),
			med("Lorazepam (Ativan)", true, "Short-term anxiety relief", anyAge),
			med("Sertraline (Zoloft)", true, "SSRI antidepressant for long-term anxiety management", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "BACK_PAIN",
			SymptomKeywords:     []string{"back pain", "lower back pain", "backache", "stiff back", "muscle spasm"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If pain radiates down legs, loss of bladder control, or severe pain after injury",
			Advice:              "Apply ice for acute injuries, heat for muscle tension, gentle stretching, and maintain good posture",
		},
		Medicines: []models.Medicine{
			med("Ibuprofen (Advil)", false, "Anti-inflammatory for muscle and joint pain", grownUps),
			med("Naproxen (Aleve)", false, "Longer-lasting anti-inflammatory", grownUps),
			med("Acetaminophen (Tylenol)", false, "Pain relief without anti-inflammatory effects", anyAge),
			med("Topical analgesics (Aspercreme, Bengay)", false, "Localized pain relief", anyAge),
			med("Muscle relaxants (Cyclobenzaprine)", true, "For muscle spasms", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "UTI",
			SymptomKeywords:     []string{"burning urination", "painful urination", "frequent urination", "urinary", "cloudy urine", "pelvic pain"},
			Severity:            models.ConditionModerate,
			RequiresDoctorVisit: true,
			DoctorVisitGuidance: "Strongly recommended for proper diagnosis and antibiotic treatment",
			Advice:              "Drink plenty of water, urinate frequently, wipe front to back, and avoid irritating products",
		},
		Medicines: []models.Medicine{
			med("Cranberry supplements", false, "May help prevent bacterial adhesion", anyAge),
			med("Phenazopyridine (AZO)", false, "Urinary pain relief", anyAge),
			med("Trimethoprim-sulfamethoxazole (Bactrim)", true, "First-line antibiotic for UTIs", anyAge),
			med("Nitrofurantoin (Macrobid)", true, "Alternative antibiotic for UTIs", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "EAR_PAIN",
			SymptomKeywords:     []string{"ear pain", "earache", "ear infection", "ear pressure", "swimmer's ear"},
			Severity:            models.ConditionMild,
			DoctorVisitGuidance: "If severe pain, drainage, hearing loss, or no improvement in 48-72 h",
			Advice:              "Keep ear dry, apply warm compress, use pain relievers as directed, and avoid inserting objects in the ear",
		},
		Medicines: []models.Medicine{
			med("Acetaminophen (Tylenol)", false, "Pain reliever for mild ear pain and fever", anyAge),
			med("Ibuprofen (Advil)", false, "Anti-inflammatory pain relief", anyAge),
			med("Antipyrine/Benzocaine otic drops (Auralgan)", true, "Analgesic ear drops for acute otitis media", anyAge),
			med("Amoxicillin", true, "First-line antibiotic for bacterial ear infection", anyAge),
			med("Ofloxacin otic drops", true, "Antibiotic ear drops for swimmer's ear", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "HEART_ATTACK",
			SymptomKeywords:     []string{"heart attack", "chest pain", "pain radiating to arm", "crushing chest pressure"},
			Severity:            models.ConditionSevere,
			RequiresDoctorVisit: true,
			IsEmergency:         true,
			DoctorVisitGuidance: emergencyVisit,
			Advice:              "Call emergency services immediately. If conscious, chew aspirin and rest in comfortable position",
		},
		Medicines: []models.Medicine{
			med("Aspirin (chewable)", false, "EMERGENCY: Chew 325mg aspirin immediately if not allergic", grownUps),
			med("Nitroglycerin", true, "EMERGENCY: Take only if already prescribed for a heart condition, as directed", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "STROKE",
			SymptomKeywords:     []string{"stroke", "face drooping", "arm weakness", "slurred speech", "sudden numbness"},
			Severity:            models.ConditionSevere,
			RequiresDoctorVisit: true,
			IsEmergency:         true,
			DoctorVisitGuidance: emergencyVisit,
			Advice:              "Call emergency services immediately. Note time of symptom onset. Do not give food, water, or medication",
		},
		Medicines: []models.Medicine{
			med("Do not give any medication", false, "EMERGENCY: No medications should be given", grownUps),
		},
	},
	{
		Condition: models.Condition{
			Name:                "SEVERE_ALLERGIC_REACTION",
			SymptomKeywords:     []string{"anaphylaxis", "severe allergic reaction", "throat swelling", "swollen tongue", "hives all over"},
			Severity:            models.ConditionSevere,
			RequiresDoctorVisit: true,
			IsEmergency:         true,
			DoctorVisitGuidance: emergencyVisit,
			Advice:              "Use EpiPen if available, call emergency services, avoid trigger if known, and monitor breathing",
		},
		Medicines: []models.Medicine{
			med("Epinephrine auto-injector (EpiPen)", true, "EMERGENCY: Use immediately if available", anyAge),
			med("Benadryl (Diphenhydramine)", false, "EMERGENCY: 25-50mg after epinephrine, only if conscious and able to swallow", anyAge),
		},
	},
	{
		Condition: models.Condition{
			Name:                "ASTHMA_ATTACK",
			SymptomKeywords:     []string{"asthma attack", "wheezing", "shortness of breath", "can't breathe", "tight chest"},
			Severity:            models.ConditionSevere,
			RequiresDoctorVisit: true,
			IsEmergency:         true,
			DoctorVisitGuidance: "EMERGENCY if severe: difficulty speaking, blue lips/fingers, or rescue inhaler not helping",
			Advice:              "Use rescue inhaler, sit upright, stay calm, avoid triggers, and seek immediate help if not improving",
		},
		Medicines: []models.Medicine{
			med("Albuterol inhaler (Rescue inhaler)", true, "EMERGENCY: Use rescue inhaler as prescribed", anyAge),
			med("Prednisone", true, "EMERGENCY: Prescribed rescue dose only, as set out in your asthma action plan", grownUps),
		},
	},
}

// Entries returns a copy of the bundled catalog in declaration order.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}

// Lookup finds an entry by taxonomy key, ignoring case.
func Lookup(name string) (Entry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Condition.Name, name) {
			return e.clone(), true
		}
	}
	return Entry{}, false
}

func (e Entry) clone() Entry {
	c := e.Condition
	c.SymptomKeywords = append([]string(nil), e.Condition.SymptomKeywords...)

	meds := make([]models.Medicine, len(e.Medicines))
	for i, m := range e.Medicines {
		m.AllowedAgeGroups = append([]models.AgeGroup(nil), m.AllowedAgeGroups...)
		meds[i] = m
	}
	return Entry{Condition: c, Medicines: meds}
}
