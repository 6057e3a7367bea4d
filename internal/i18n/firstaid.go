package i18n

type FirstAidTopic struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

type FirstAidGuide struct {
	Topics     []FirstAidTopic `json:"topics"`
	Disclaimer string          `json:"disclaimer"`
}

var firstAid = FirstAidGuide{
	Topics: []FirstAidTopic{
		{ID: "cpr", Title: "CPR (Adults)", Steps: []string{
			"Check responsiveness and breathing. Call emergency services.",
			"Place heel of hand on center of chest, other hand on top.",
			"Press hard and fast: 100-120 compressions/min, depth about 5-6 cm.",
			"Allow full chest recoil; minimize interruptions.",
			"If trained, give 30 compressions to 2 rescue breaths.",
		}},
		{ID: "choking", Title: "Choking (Adults)", Steps: []string{
			"If able to cough or speak, encourage coughing.",
			"If unable to breathe or speak: stand behind, give 5 back blows.",
			"Then 5 abdominal thrusts. Alternate 5 and 5 until relieved.",
			"If unresponsive, start CPR and check mouth for object.",
		}},
		{ID: "bleeding", Title: "Severe Bleeding", Steps: []string{
			"Apply direct pressure with clean cloth or bandage.",
			"Elevate the bleeding area if possible.",
			"Do not remove soaked dressings; add layers and keep pressing.",
			"Use a tourniquet for life-threatening limb bleeding if trained.",
		}},
		{ID: "burns", Title: "Burns", Steps: []string{
			"Cool burn under cool running water for 20 minutes.",
			"Do not use ice, butter or creams. Do not pop blisters.",
			"Cover loosely with sterile, non-adhesive dressing.",
		}},
		{ID: "heart-attack", Title: "Heart Attack", Steps: []string{
			"Watch for chest pain or pressure, sweating, nausea and shortness of breath.",
			"Call emergency services immediately.",
			"Have the person rest; give aspirin if not allergic and not contraindicated.",
		}},
		{ID: "stroke", Title: "Stroke (FAST)", Steps: []string{
			"Face drooping, Arm weakness, Speech difficulty, Time to call emergency.",
			"Note time of symptom onset; do not give food or drink.",
		}},
		{ID: "fractures", Title: "Fractures and Sprains", Steps: []string{
			"Immobilize the area; avoid moving the limb.",
			"RICE: Rest, Ice, Compression, Elevation.",
		}},
		{ID: "poisoning", Title: "Poisoning", Steps: []string{
			"Do not induce vomiting unless instructed by professionals.",
			"Identify the substance; call poison control or emergency services.",
		}},
		{ID: "seizures", Title: "Seizures", Steps: []string{
			"Protect from injury; clear nearby objects.",
			"Do not restrain or put anything in the mouth.",
			"After the seizure, place in recovery position and monitor breathing.",
		}},
	},
	Disclaimer: "This guide is informational and not a substitute for professional training or medical care.",
}

// FirstAid returns the static first aid guide.
func FirstAid() FirstAidGuide {
	return firstAid
}
