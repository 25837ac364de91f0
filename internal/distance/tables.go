package distance

// Point is a labelled latitude/longitude centroid.
type Point struct {
	Label string
	Lat   float64
	Lon   float64
}

// postalCentroids maps 3- and 2-digit PIN code prefixes to approximate region centroids.
var postalCentroids = map[string]Point{
	// 3-digit prefixes
	"110": {"New Delhi", 28.6139, 77.2090},
	"121": {"Faridabad", 28.4089, 77.3178},
	"122": {"Gurugram", 28.4595, 77.0266},
	"141": {"Ludhiana", 30.9010, 75.8573},
	"160": {"Chandigarh", 30.7333, 76.7794},
	"201": {"Noida / Ghaziabad", 28.5355, 77.3910},
	"208": {"Kanpur", 26.4499, 80.3319},
	"226": {"Lucknow", 26.8467, 80.9462},
	"282": {"Agra", 27.1767, 78.0081},
	"302": {"Jaipur", 26.9124, 75.7873},
	"342": {"Jodhpur", 26.2389, 73.0243},
	"360": {"Rajkot", 22.3039, 70.8022},
	"370": {"Gandhidham", 23.0753, 70.1337},
	"380": {"Ahmedabad", 23.0225, 72.5714},
	"390": {"Vadodara", 22.3072, 73.1812},
	"395": {"Surat", 21.1702, 72.8311},
	"400": {"Mumbai", 19.0760, 72.8777},
	"410": {"Navi Mumbai", 19.0330, 73.0297},
	"411": {"Pune", 18.5204, 73.8567},
	"422": {"Nashik", 19.9975, 73.7898},
	"440": {"Nagpur", 21.1458, 79.0882},
	"452": {"Indore", 22.7196, 75.8577},
	"462": {"Bhopal", 23.2599, 77.4126},
	"500": {"Hyderabad", 17.3850, 78.4867},
	"530": {"Visakhapatnam", 17.6868, 83.2185},
	"560": {"Bengaluru", 12.9716, 77.5946},
	"575": {"Mangaluru", 12.9141, 74.8560},
	"600": {"Chennai", 13.0827, 80.2707},
	"620": {"Tiruchirappalli", 10.7905, 78.7047},
	"625": {"Madurai", 9.9252, 78.1198},
	"628": {"Thoothukudi", 8.7642, 78.1348},
	"638": {"Erode", 11.3410, 77.7172},
	"641": {"Coimbatore", 11.0168, 76.9558},
	"682": {"Kochi", 9.9312, 76.2673},
	"700": {"Kolkata", 22.5726, 88.3639},
	"751": {"Bhubaneswar", 20.2961, 85.8245},
	"781": {"Guwahati", 26.1445, 91.7362},
	"800": {"Patna", 25.5941, 85.1376},

	// 2-digit prefixes (state / postal-circle level)
	"11": {"Delhi", 28.6139, 77.2090},
	"12": {"Haryana", 29.0588, 76.0856},
	"14": {"Punjab", 31.1471, 75.3412},
	"16": {"Chandigarh region", 30.7333, 76.7794},
	"20": {"Western Uttar Pradesh", 27.8974, 78.0880},
	"22": {"Central Uttar Pradesh", 26.8467, 80.9462},
	"30": {"Rajasthan", 26.9124, 75.7873},
	"36": {"Saurashtra", 22.3039, 70.8022},
	"37": {"Kutch", 23.2420, 69.6669},
	"38": {"Gujarat", 23.0225, 72.5714},
	"39": {"South Gujarat", 21.1702, 72.8311},
	"40": {"Mumbai region", 19.0760, 72.8777},
	"41": {"Western Maharashtra", 18.5204, 73.8567},
	"44": {"Vidarbha", 21.1458, 79.0882},
	"45": {"Madhya Pradesh", 22.7196, 75.8577},
	"50": {"Telangana", 17.3850, 78.4867},
	"53": {"Andhra Pradesh", 16.5062, 80.6480},
	"56": {"Karnataka", 12.9716, 77.5946},
	"60": {"Chennai region", 13.0827, 80.2707},
	"62": {"Southern Tamil Nadu", 9.9252, 78.1198},
	"64": {"Western Tamil Nadu", 11.0168, 76.9558},
	"68": {"Kerala", 9.9312, 76.2673},
	"70": {"West Bengal", 22.5726, 88.3639},
	"75": {"Odisha", 20.2961, 85.8245},
	"78": {"Assam", 26.1445, 91.7362},
	"80": {"Bihar", 25.5941, 85.1376},
}

// portCoordinates maps UN/LOCODEs of Indian origin ports to their terminal coordinates.
var portCoordinates = map[string]Point{
	"INNSA": {"Nhava Sheva (JNPT)", 18.9497, 72.9512},
	"INBOM": {"Mumbai Port", 18.9388, 72.8354},
	"INMUN": {"Mundra", 22.8390, 69.7211},
	"INIXY": {"Kandla", 23.0333, 70.2167},
	"INPAV": {"Pipavav", 20.9120, 71.5050},
	"INHZA": {"Hazira", 21.1140, 72.6350},
	"INMAA": {"Chennai", 13.0965, 80.2921},
	"INKAT": {"Kattupalli", 13.3040, 80.3430},
	"INTUT": {"Tuticorin", 8.7642, 78.1348},
	"INCOK": {"Cochin", 9.9658, 76.2671},
	"INVTZ": {"Visakhapatnam", 17.6868, 83.2185},
	"INCCU": {"Kolkata", 22.5450, 88.3090},
	"INHAL": {"Haldia", 22.0257, 88.0583},
	"INKRI": {"Krishnapatnam", 14.2500, 80.1330},
	"INMRM": {"Mormugao", 15.4089, 73.7928},
	"INNML": {"New Mangalore", 12.9226, 74.8140},
}
